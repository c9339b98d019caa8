package telegramfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://api.telegram.org"
	DefaultMaxBytes = 20 << 20
)

var ErrTooLarge = errors.New("file exceeds size limit")

// FileGetter is the part of *bot.Bot the fetcher needs.
type FileGetter interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	Token() string
}

type Fetcher struct {
	bot      FileGetter
	client   *http.Client
	baseURL  string
	maxBytes int64
	log      *zap.Logger
}

type Option func(*Fetcher)

func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

func New(b FileGetter, log *zap.Logger, opts ...Option) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Fetcher{
		bot:      b,
		client:   &http.Client{Timeout: 2 * time.Minute},
		baseURL:  DefaultBaseURL,
		maxBytes: DefaultMaxBytes,
		log:      log.Named("telegramfile"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves fileID to a download path and reads the content into memory.
func (f *Fetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	file, err := f.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, errors.Wrap(err, "get file")
	}
	if file.FileSize > f.maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", file.FileSize)
	}
	if file.FilePath == "" {
		return nil, errors.New("empty file path")
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", f.baseURL, f.bot.Token(), file.FilePath)
	data, err := f.download(ctx, fileURL)
	if err != nil {
		f.log.Warn("download failed", zap.String("file_id", fileID), zap.Error(err))
		return nil, err
	}
	f.log.Debug("file downloaded", zap.String("file_id", fileID), zap.Int("bytes", len(data)))
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// the request URL carries the bot token
		return nil, errors.New("download request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
