package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) UpsertUser(ctx context.Context, user types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockBackend) GetUser(ctx context.Context, userID int64) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockBackend) TouchUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBackend) SetPremium(ctx context.Context, userID int64, premium bool) error {
	args := m.Called(ctx, userID, premium)
	return args.Error(0)
}

func (m *MockBackend) InsertChannel(ctx context.Context, ch types.Channel) (int64, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBackend) ListActiveChannels(ctx context.Context, userID int64) ([]types.Channel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Channel), args.Error(1)
}

func (m *MockBackend) DeactivateChannel(ctx context.Context, userID, channelID int64) (bool, error) {
	args := m.Called(ctx, userID, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) UpsertSession(ctx context.Context, s types.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockBackend) GetActiveSession(ctx context.Context, userID int64) (*types.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockBackend) DeactivateSession(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBackend) UpsertFrozenEntry(ctx context.Context, e types.FrozenCacheEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockBackend) GetFrozenEntry(ctx context.Context, channelRef, phone string) (*types.FrozenCacheEntry, error) {
	args := m.Called(ctx, channelRef, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FrozenCacheEntry), args.Error(1)
}

func (m *MockBackend) InsertWithdrawRequest(ctx context.Context, req types.WithdrawRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBackend) FinishWithdrawRequest(ctx context.Context, id int64, status types.WithdrawStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *MockBackend) Stats(ctx context.Context) (types.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Stats), args.Error(1)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Close() {
	m.Called()
}
