package types

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

type User struct {
	UserID       int64
	Username     string
	FirstName    string
	IsPremium    bool
	RegisteredAt time.Time
	LastActive   time.Time
}

type Channel struct {
	ID         int64
	UserID     int64
	ChannelRef string
	Name       string
	IsActive   bool
	CreatedAt  time.Time
}

// Session holds the opaque credential blob a user linked to the bot.
// Label is the name of the uploaded file.
type Session struct {
	UserID     int64
	Data       []byte
	Label      string
	UploadedAt time.Time
	IsActive   bool
}

type FrozenCacheEntry struct {
	ChannelRef string
	Phone      string
	IsFrozen   bool
	CheckedAt  time.Time
}

type WithdrawRequest struct {
	ID           int64
	UserID       int64
	Status       WithdrawStatus
	PhoneNumbers []string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

type Stats struct {
	Users              int
	PremiumUsers       int
	ActiveChannels     int
	ActiveSessions     int
	PendingWithdrawals int
}

// Settings is the read-only runtime configuration shown to admins.
type Settings struct {
	FreeChannels    int
	PremiumChannels int
	FrozenCacheTTL  time.Duration
}

// Backend is the raw storage contract. Missing rows are reported as ErrNotFound.
type Backend interface {
	UpsertUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	TouchUser(ctx context.Context, userID int64) error
	SetPremium(ctx context.Context, userID int64, premium bool) error

	InsertChannel(ctx context.Context, ch Channel) (int64, error)
	ListActiveChannels(ctx context.Context, userID int64) ([]Channel, error)
	DeactivateChannel(ctx context.Context, userID, channelID int64) (bool, error)

	UpsertSession(ctx context.Context, s Session) error
	GetActiveSession(ctx context.Context, userID int64) (*Session, error)
	DeactivateSession(ctx context.Context, userID int64) error

	UpsertFrozenEntry(ctx context.Context, e FrozenCacheEntry) error
	GetFrozenEntry(ctx context.Context, channelRef, phone string) (*FrozenCacheEntry, error)

	InsertWithdrawRequest(ctx context.Context, req WithdrawRequest) (int64, error)
	FinishWithdrawRequest(ctx context.Context, id int64, status WithdrawStatus, at time.Time) error

	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close()
}
