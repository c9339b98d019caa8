package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// FrozenResultTTL is how long a frozen-check result counts as fresh.
const FrozenResultTTL = time.Hour

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// FrozenCache is an optional fast path in front of the backend frozen_cache table.
type FrozenCache interface {
	Get(ctx context.Context, channelRef, phone string) (frozen bool, checkedAt time.Time, ok bool, err error)
	Set(ctx context.Context, channelRef, phone string, frozen bool, checkedAt time.Time, ttl time.Duration) error
}

// Store is the facade the rest of the bot talks to. Backend failures never escape it:
// they are logged and reported as false or as a missing value.
type Store struct {
	backend types.Backend
	admins  AdminChecker
	cache   FrozenCache
	log     *zap.Logger
	now     func() time.Time
	ttl     time.Duration
}

type Option func(*Store)

func WithFrozenCache(c FrozenCache) Option {
	return func(s *Store) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend types.Backend, admins AdminChecker, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		admins:  admins,
		log:     log.Named("store"),
		now:     time.Now,
		ttl:     FrozenResultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FrozenTTL is how long a cached frozen verdict stays valid.
func (s *Store) FrozenTTL() time.Duration {
	return s.ttl
}

func (s *Store) fail(op string, err error, fields ...zap.Field) {
	s.log.Error(op+" failed", append(fields, zap.Error(err))...)
}

func (s *Store) RegisterUser(ctx context.Context, userID int64, username, firstName string) bool {
	err := s.backend.UpsertUser(ctx, types.User{UserID: userID, Username: username, FirstName: firstName})
	if err != nil {
		s.fail("register user", err, zap.Int64("user_id", userID))
		return false
	}
	return true
}

func (s *Store) IsUserRegistered(ctx context.Context, userID int64) bool {
	_, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.fail("lookup user", err, zap.Int64("user_id", userID))
		}
		return false
	}
	return true
}

func (s *Store) TouchUser(ctx context.Context, userID int64) bool {
	if err := s.backend.TouchUser(ctx, userID); err != nil {
		s.fail("touch user", err, zap.Int64("user_id", userID))
		return false
	}
	return true
}

func (s *Store) SetPremiumStatus(ctx context.Context, userID int64, premium bool) bool {
	if err := s.backend.SetPremium(ctx, userID, premium); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.log.Info("set premium for unknown user", zap.Int64("user_id", userID))
			return false
		}
		s.fail("set premium", err, zap.Int64("user_id", userID), zap.Bool("premium", premium))
		return false
	}
	return true
}

// IsPremiumUser reports admins as premium without touching the backend.
func (s *Store) IsPremiumUser(ctx context.Context, userID int64) bool {
	if s.admins != nil && s.admins.IsAdmin(userID) {
		return true
	}
	u, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.fail("lookup premium", err, zap.Int64("user_id", userID))
		}
		return false
	}
	return u.IsPremium
}

func (s *Store) AddChannel(ctx context.Context, userID int64, ref, name string) (types.Channel, bool) {
	ch := types.Channel{UserID: userID, ChannelRef: ref, Name: name, IsActive: true}
	id, err := s.backend.InsertChannel(ctx, ch)
	if err != nil {
		s.fail("add channel", err, zap.Int64("user_id", userID), zap.String("channel", ref))
		return types.Channel{}, false
	}
	ch.ID = id
	ch.CreatedAt = s.now()
	return ch, true
}

func (s *Store) GetUserChannels(ctx context.Context, userID int64) []types.Channel {
	channels, err := s.backend.ListActiveChannels(ctx, userID)
	if err != nil {
		s.fail("list channels", err, zap.Int64("user_id", userID))
		return nil
	}
	return channels
}

func (s *Store) RemoveChannel(ctx context.Context, userID, channelID int64) bool {
	ok, err := s.backend.DeactivateChannel(ctx, userID, channelID)
	if err != nil {
		s.fail("remove channel", err, zap.Int64("user_id", userID), zap.Int64("channel_id", channelID))
		return false
	}
	return ok
}

func (s *Store) StoreSession(ctx context.Context, userID int64, blob []byte, label string) bool {
	if len(blob) == 0 {
		return false
	}
	err := s.backend.UpsertSession(ctx, types.Session{UserID: userID, Data: blob, Label: label})
	if err != nil {
		s.fail("store session", err, zap.Int64("user_id", userID), zap.Int("bytes", len(blob)))
		return false
	}
	return true
}

func (s *Store) HasSession(ctx context.Context, userID int64) bool {
	_, ok := s.GetSession(ctx, userID)
	return ok
}

func (s *Store) GetSession(ctx context.Context, userID int64) ([]byte, bool) {
	sess, ok := s.SessionInfo(ctx, userID)
	if !ok {
		return nil, false
	}
	return sess.Data, true
}

func (s *Store) SessionInfo(ctx context.Context, userID int64) (types.Session, bool) {
	sess, err := s.backend.GetActiveSession(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.fail("get session", err, zap.Int64("user_id", userID))
		}
		return types.Session{}, false
	}
	return *sess, true
}

// RemoveSession deactivates the session and wipes its credential blob.
func (s *Store) RemoveSession(ctx context.Context, userID int64) bool {
	if err := s.backend.DeactivateSession(ctx, userID); err != nil {
		s.fail("remove session", err, zap.Int64("user_id", userID))
		return false
	}
	return true
}

func (s *Store) CacheFrozenResult(ctx context.Context, channelRef, phone string, frozen bool) bool {
	now := s.now()
	err := s.backend.UpsertFrozenEntry(ctx, types.FrozenCacheEntry{
		ChannelRef: channelRef,
		Phone:      phone,
		IsFrozen:   frozen,
		CheckedAt:  now,
	})
	if err != nil {
		s.fail("cache frozen result", err, zap.String("channel", channelRef), zap.String("phone", phone))
		return false
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, channelRef, phone, frozen, now, s.ttl); err != nil {
			s.log.Warn("redis frozen cache write failed", zap.String("channel", channelRef), zap.Error(err))
		}
	}
	return true
}

// GetCachedResult returns the cached frozen flag. Entries checked ttl or more ago are misses.
func (s *Store) GetCachedResult(ctx context.Context, channelRef, phone string) (bool, bool) {
	now := s.now()
	if s.cache != nil {
		frozen, checkedAt, ok, err := s.cache.Get(ctx, channelRef, phone)
		if err != nil {
			s.log.Warn("redis frozen cache read failed", zap.String("channel", channelRef), zap.Error(err))
		} else if ok && now.Sub(checkedAt) < s.ttl {
			return frozen, true
		}
	}

	e, err := s.backend.GetFrozenEntry(ctx, channelRef, phone)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.fail("get cached result", err, zap.String("channel", channelRef), zap.String("phone", phone))
		}
		return false, false
	}
	age := now.Sub(e.CheckedAt)
	if age >= s.ttl {
		return false, false
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, channelRef, phone, e.IsFrozen, e.CheckedAt, s.ttl-age); err != nil {
			s.log.Warn("redis frozen cache backfill failed", zap.String("channel", channelRef), zap.Error(err))
		}
	}
	return e.IsFrozen, true
}

func (s *Store) CreateWithdrawRequest(ctx context.Context, userID int64, numbers []string) (types.WithdrawRequest, bool) {
	req := types.WithdrawRequest{
		UserID:       userID,
		Status:       types.WithdrawPending,
		PhoneNumbers: numbers,
	}
	id, err := s.backend.InsertWithdrawRequest(ctx, req)
	if err != nil {
		s.fail("create withdraw request", err, zap.Int64("user_id", userID), zap.Int("numbers", len(numbers)))
		return types.WithdrawRequest{}, false
	}
	req.ID = id
	req.CreatedAt = s.now()
	return req, true
}

func (s *Store) FinishWithdrawRequest(ctx context.Context, id int64, status types.WithdrawStatus) bool {
	if err := s.backend.FinishWithdrawRequest(ctx, id, status, s.now()); err != nil {
		s.fail("finish withdraw request", err, zap.Int64("request_id", id), zap.String("status", string(status)))
		return false
	}
	return true
}

func (s *Store) Stats(ctx context.Context) (types.Stats, bool) {
	st, err := s.backend.Stats(ctx)
	if err != nil {
		s.fail("collect stats", err)
		return types.Stats{}, false
	}
	return st, true
}
