package telegramfile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	file *models.File
	err  error
}

func (g fakeGetter) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	if g.err != nil {
		return nil, g.err
	}
	f := *g.file
	f.FileID = params.FileID
	return &f, nil
}

func (g fakeGetter) Token() string { return "TOKEN" }

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/botTOKEN/documents/a.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	srv := newServer(t, "+1234567890")

	t.Run("ok", func(t *testing.T) {
		f := New(fakeGetter{file: &models.File{FilePath: "documents/a.txt", FileSize: 11}}, nil, WithBaseURL(srv.URL))
		data, err := f.Fetch(context.Background(), "id1")
		require.NoError(t, err)
		assert.Equal(t, "+1234567890", string(data))
	})

	t.Run("declared size over limit", func(t *testing.T) {
		f := New(fakeGetter{file: &models.File{FilePath: "documents/a.txt", FileSize: 100}}, nil,
			WithBaseURL(srv.URL), WithMaxBytes(10))
		_, err := f.Fetch(context.Background(), "id1")
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("body over limit", func(t *testing.T) {
		f := New(fakeGetter{file: &models.File{FilePath: "documents/a.txt"}}, nil,
			WithBaseURL(srv.URL), WithMaxBytes(5))
		_, err := f.Fetch(context.Background(), "id1")
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("missing file", func(t *testing.T) {
		f := New(fakeGetter{file: &models.File{FilePath: "documents/b.txt"}}, nil, WithBaseURL(srv.URL))
		_, err := f.Fetch(context.Background(), "id1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("get file error", func(t *testing.T) {
		f := New(fakeGetter{err: errors.New("boom")}, nil, WithBaseURL(srv.URL))
		_, err := f.Fetch(context.Background(), "id1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get file")
	})
}
