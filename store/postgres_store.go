package store

import (
	"context"
	"embed"
	"encoding/json"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const queryTimeout = 5 * time.Second

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty postgres dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres pool")
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	return err
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user types.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO users (user_id, username, first_name)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
  username = EXCLUDED.username,
  first_name = EXCLUDED.first_name,
  last_active = NOW();
`, user.UserID, strings.TrimSpace(user.Username), strings.TrimSpace(user.FirstName))
	return errors.Wrapf(err, "upsert user %d", user.UserID)
}

func (s *PostgresStore) GetUser(ctx context.Context, userID int64) (*types.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var u types.User
	err := s.pool.QueryRow(ctx, `
SELECT user_id, username, first_name, is_premium, registered_at, last_active
FROM users
WHERE user_id = $1
`, userID).Scan(&u.UserID, &u.Username, &u.FirstName, &u.IsPremium, &u.RegisteredAt, &u.LastActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *PostgresStore) TouchUser(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_active = NOW() WHERE user_id = $1`, userID)
	return errors.Wrapf(err, "touch user %d", userID)
}

func (s *PostgresStore) SetPremium(ctx context.Context, userID int64, premium bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_premium = $2 WHERE user_id = $1`, userID, premium)
	if err != nil {
		return errors.Wrapf(err, "set premium for user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertChannel(ctx context.Context, ch types.Channel) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var id int64
	err := s.pool.QueryRow(ctx, `
INSERT INTO channels (user_id, channel_ref, channel_name)
VALUES ($1, $2, $3)
RETURNING id
`, ch.UserID, ch.ChannelRef, ch.Name).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "insert channel %s", ch.ChannelRef)
	}
	return id, nil
}

func (s *PostgresStore) ListActiveChannels(ctx context.Context, userID int64) ([]types.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := psql.
		Select("id", "user_id", "channel_ref", "channel_name", "is_active", "created_at").
		From("channels").
		Where(sq.Eq{"user_id": userID, "is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list channels for user %d", userID)
	}
	defer rows.Close()

	channels := make([]types.Channel, 0)
	for rows.Next() {
		var ch types.Channel
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.ChannelRef, &ch.Name, &ch.IsActive, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (s *PostgresStore) DeactivateChannel(ctx context.Context, userID, channelID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE channels SET is_active = FALSE
WHERE id = $1 AND user_id = $2 AND is_active
`, channelID, userID)
	if err != nil {
		return false, errors.Wrapf(err, "deactivate channel %d", channelID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) UpsertSession(ctx context.Context, sess types.Session) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO user_sessions (user_id, session_data, label)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
  session_data = EXCLUDED.session_data,
  label = EXCLUDED.label,
  uploaded_at = NOW(),
  is_active = TRUE;
`, sess.UserID, sess.Data, strings.TrimSpace(sess.Label))
	return errors.Wrapf(err, "upsert session for user %d", sess.UserID)
}

func (s *PostgresStore) GetActiveSession(ctx context.Context, userID int64) (*types.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	sess := types.Session{UserID: userID}
	err := s.pool.QueryRow(ctx, `
SELECT session_data, label, uploaded_at, is_active
FROM user_sessions
WHERE user_id = $1 AND is_active
`, userID).Scan(&sess.Data, &sess.Label, &sess.UploadedAt, &sess.IsActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

// DeactivateSession marks the session inactive and erases the credential blob.
func (s *PostgresStore) DeactivateSession(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE user_sessions SET is_active = FALSE, session_data = NULL
WHERE user_id = $1
`, userID)
	return errors.Wrapf(err, "deactivate session for user %d", userID)
}

func (s *PostgresStore) UpsertFrozenEntry(ctx context.Context, e types.FrozenCacheEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO frozen_cache (channel_ref, phone_number, is_frozen, checked_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (channel_ref, phone_number) DO UPDATE SET
  is_frozen = EXCLUDED.is_frozen,
  checked_at = EXCLUDED.checked_at;
`, e.ChannelRef, e.Phone, e.IsFrozen, e.CheckedAt)
	return errors.Wrapf(err, "cache frozen result for %s", e.Phone)
}

func (s *PostgresStore) GetFrozenEntry(ctx context.Context, channelRef, phone string) (*types.FrozenCacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	e := types.FrozenCacheEntry{ChannelRef: channelRef, Phone: phone}
	err := s.pool.QueryRow(ctx, `
SELECT is_frozen, checked_at
FROM frozen_cache
WHERE channel_ref = $1 AND phone_number = $2
`, channelRef, phone).Scan(&e.IsFrozen, &e.CheckedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *PostgresStore) InsertWithdrawRequest(ctx context.Context, req types.WithdrawRequest) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	numbers := req.PhoneNumbers
	if numbers == nil {
		numbers = []string{}
	}
	payload, err := json.Marshal(numbers)
	if err != nil {
		return 0, err
	}
	status := req.Status
	if status == "" {
		status = types.WithdrawPending
	}
	var id int64
	err = s.pool.QueryRow(ctx, `
INSERT INTO withdraw_requests (user_id, status, phone_numbers)
VALUES ($1, $2, $3)
RETURNING id
`, req.UserID, string(status), payload).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "insert withdraw request for user %d", req.UserID)
	}
	return id, nil
}

func (s *PostgresStore) FinishWithdrawRequest(ctx context.Context, id int64, status types.WithdrawStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE withdraw_requests SET status = $2, processed_at = $3
WHERE id = $1
`, id, string(status), at)
	if err != nil {
		return errors.Wrapf(err, "finish withdraw request %d", id)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (types.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var st types.Stats
	counters := []struct {
		dest  *int
		query sq.SelectBuilder
	}{
		{&st.Users, psql.Select("COUNT(*)").From("users")},
		{&st.PremiumUsers, psql.Select("COUNT(*)").From("users").Where(sq.Eq{"is_premium": true})},
		{&st.ActiveChannels, psql.Select("COUNT(*)").From("channels").Where(sq.Eq{"is_active": true})},
		{&st.ActiveSessions, psql.Select("COUNT(*)").From("user_sessions").Where(sq.Eq{"is_active": true})},
		{&st.PendingWithdrawals, psql.Select("COUNT(*)").From("withdraw_requests").Where(sq.Eq{"status": string(types.WithdrawPending)})},
	}
	for _, c := range counters {
		query, args, err := c.query.ToSql()
		if err != nil {
			return types.Stats{}, err
		}
		if err := s.pool.QueryRow(ctx, query, args...).Scan(c.dest); err != nil {
			return types.Stats{}, errors.Wrap(err, "collect stats")
		}
	}
	return st, nil
}
