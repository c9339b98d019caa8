package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// newTestPostgres connects to POSTGRES_DSN and skips when it is unset. Rows created
// for the returned user ids are removed when the test ends.
func newTestPostgres(t *testing.T) (*PostgresStore, int64, int64) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)

	base := 9_000_000_000_000 + time.Now().UnixNano()%1_000_000_000
	userA, userB := base, base+1
	t.Cleanup(func() {
		for _, q := range []string{
			`DELETE FROM withdraw_requests WHERE user_id IN ($1, $2)`,
			`DELETE FROM user_sessions WHERE user_id IN ($1, $2)`,
			`DELETE FROM channels WHERE user_id IN ($1, $2)`,
			`DELETE FROM users WHERE user_id IN ($1, $2)`,
		} {
			_, _ = s.pool.Exec(ctx, q, userA, userB)
		}
		s.Close()
	})
	return s, userA, userB
}

func TestPostgresStore_UpsertUserKeepsPremium(t *testing.T) {
	s, uid, _ := newTestPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: uid, Username: "alice", FirstName: "Alice"}))
	require.NoError(t, s.SetPremium(ctx, uid, true))
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: uid, Username: "alice2", FirstName: "Alice"}))

	u, err := s.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.True(t, u.IsPremium)
	assert.Equal(t, "alice2", u.Username)

	assert.ErrorIs(t, s.SetPremium(ctx, uid+100, true), types.ErrNotFound)
}

func TestPostgresStore_DeactivateSessionErasesBlob(t *testing.T) {
	s, uid, _ := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: uid}))

	require.NoError(t, s.UpsertSession(ctx, types.Session{UserID: uid, Data: []byte("old"), Label: "a.session"}))
	require.NoError(t, s.UpsertSession(ctx, types.Session{UserID: uid, Data: []byte("new"), Label: "b.session"}))
	sess, err := s.GetActiveSession(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), sess.Data)
	assert.Equal(t, "b.session", sess.Label)

	require.NoError(t, s.DeactivateSession(ctx, uid))
	_, err = s.GetActiveSession(ctx, uid)
	assert.ErrorIs(t, err, types.ErrNotFound)

	var (
		data   []byte
		active bool
	)
	require.NoError(t, s.pool.QueryRow(ctx,
		`SELECT session_data, is_active FROM user_sessions WHERE user_id = $1`, uid).Scan(&data, &active))
	assert.Nil(t, data)
	assert.False(t, active)
}

func TestPostgresStore_ChannelsScopedToOwner(t *testing.T) {
	s, owner, other := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: owner}))
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: other}))

	first, err := s.InsertChannel(ctx, types.Channel{UserID: owner, ChannelRef: "@first", Name: "First"})
	require.NoError(t, err)
	_, err = s.InsertChannel(ctx, types.Channel{UserID: owner, ChannelRef: "@second", Name: "Second"})
	require.NoError(t, err)

	ok, err := s.DeactivateChannel(ctx, other, first)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeactivateChannel(ctx, owner, first)
	require.NoError(t, err)
	assert.True(t, ok)

	channels, err := s.ListActiveChannels(ctx, owner)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "@second", channels[0].ChannelRef)
}

func TestPostgresStore_FrozenEntryAndWithdraw(t *testing.T) {
	s, uid, _ := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: uid}))

	ref := "@frozen-test-" + time.Now().Format("150405.000000000")
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM frozen_cache WHERE channel_ref = $1`, ref)
	})
	checked := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.UpsertFrozenEntry(ctx, types.FrozenCacheEntry{ChannelRef: ref, Phone: "1234567890", IsFrozen: false, CheckedAt: checked}))
	require.NoError(t, s.UpsertFrozenEntry(ctx, types.FrozenCacheEntry{ChannelRef: ref, Phone: "1234567890", IsFrozen: true, CheckedAt: checked}))
	e, err := s.GetFrozenEntry(ctx, ref, "1234567890")
	require.NoError(t, err)
	assert.True(t, e.IsFrozen)
	assert.True(t, checked.Equal(e.CheckedAt))

	id, err := s.InsertWithdrawRequest(ctx, types.WithdrawRequest{
		UserID: uid, Status: types.WithdrawPending, PhoneNumbers: []string{"1234567890", "0987654321"},
	})
	require.NoError(t, err)
	require.NoError(t, s.FinishWithdrawRequest(ctx, id, types.WithdrawProcessed, time.Now()))
	assert.ErrorIs(t, s.FinishWithdrawRequest(ctx, -1, types.WithdrawProcessed, time.Now()), types.ErrNotFound)

	var nums []string
	require.NoError(t, s.pool.QueryRow(ctx, `SELECT phone_numbers FROM withdraw_requests WHERE id = $1`, id).Scan(&nums))
	assert.Equal(t, []string{"1234567890", "0987654321"}, nums)
}
