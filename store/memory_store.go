package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

type frozenKey struct {
	channelRef string
	phone      string
}

// MemoryStore is a process-local Backend. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[int64]types.User
	channels  map[int64]types.Channel
	sessions  map[int64]types.Session
	frozen    map[frozenKey]types.FrozenCacheEntry
	withdraws map[int64]types.WithdrawRequest
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       time.Now,
		users:     make(map[int64]types.User),
		channels:  make(map[int64]types.Channel),
		sessions:  make(map[int64]types.Session),
		frozen:    make(map[frozenKey]types.FrozenCacheEntry),
		withdraws: make(map[int64]types.WithdrawRequest),
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) UpsertUser(_ context.Context, user types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	existing, ok := m.users[user.UserID]
	if !ok {
		user.IsPremium = false
		user.RegisteredAt = now
		user.LastActive = now
		m.users[user.UserID] = user
		return nil
	}
	existing.Username = user.Username
	existing.FirstName = user.FirstName
	existing.LastActive = now
	m.users[user.UserID] = existing
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID int64) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) TouchUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LastActive = m.now()
		m.users[userID] = u
	}
	return nil
}

func (m *MemoryStore) SetPremium(_ context.Context, userID int64, premium bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return types.ErrNotFound
	}
	u.IsPremium = premium
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) InsertChannel(_ context.Context, ch types.Channel) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[ch.UserID]; !ok {
		return 0, types.ErrNotFound
	}
	ch.ID = m.id()
	ch.IsActive = true
	ch.CreatedAt = m.now()
	m.channels[ch.ID] = ch
	return ch.ID, nil
}

func (m *MemoryStore) ListActiveChannels(_ context.Context, userID int64) ([]types.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Channel, 0)
	for _, ch := range m.channels {
		if ch.UserID == userID && ch.IsActive {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DeactivateChannel(_ context.Context, userID, channelID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok || ch.UserID != userID || !ch.IsActive {
		return false, nil
	}
	ch.IsActive = false
	m.channels[channelID] = ch
	return true, nil
}

func (m *MemoryStore) UpsertSession(_ context.Context, s types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[s.UserID]; !ok {
		return types.ErrNotFound
	}
	s.Data = append([]byte(nil), s.Data...)
	s.UploadedAt = m.now()
	s.IsActive = true
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemoryStore) GetActiveSession(_ context.Context, userID int64) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok || !s.IsActive {
		return nil, types.ErrNotFound
	}
	s.Data = append([]byte(nil), s.Data...)
	return &s, nil
}

func (m *MemoryStore) DeactivateSession(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	s.IsActive = false
	s.Data = nil
	m.sessions[userID] = s
	return nil
}

func (m *MemoryStore) UpsertFrozenEntry(_ context.Context, e types.FrozenCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen[frozenKey{e.ChannelRef, e.Phone}] = e
	return nil
}

func (m *MemoryStore) GetFrozenEntry(_ context.Context, channelRef, phone string) (*types.FrozenCacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.frozen[frozenKey{channelRef, phone}]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &e, nil
}

func (m *MemoryStore) InsertWithdrawRequest(_ context.Context, req types.WithdrawRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.id()
	if req.Status == "" {
		req.Status = types.WithdrawPending
	}
	req.PhoneNumbers = append([]string(nil), req.PhoneNumbers...)
	req.CreatedAt = m.now()
	m.withdraws[req.ID] = req
	return req.ID, nil
}

func (m *MemoryStore) FinishWithdrawRequest(_ context.Context, id int64, status types.WithdrawStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.withdraws[id]
	if !ok {
		return types.ErrNotFound
	}
	req.Status = status
	req.ProcessedAt = &at
	m.withdraws[id] = req
	return nil
}

func (m *MemoryStore) Stats(_ context.Context) (types.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st types.Stats
	st.Users = len(m.users)
	for _, u := range m.users {
		if u.IsPremium {
			st.PremiumUsers++
		}
	}
	for _, ch := range m.channels {
		if ch.IsActive {
			st.ActiveChannels++
		}
	}
	for _, s := range m.sessions {
		if s.IsActive {
			st.ActiveSessions++
		}
	}
	for _, w := range m.withdraws {
		if w.Status == types.WithdrawPending {
			st.PendingWithdrawals++
		}
	}
	return st, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}
