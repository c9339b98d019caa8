package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdmins(t *testing.T) {
	admins, err := ParseAdmins("111, 222;333\n444")
	require.NoError(t, err)
	for _, id := range []int64{111, 222, 333, 444} {
		assert.True(t, admins.IsAdmin(id))
	}
	assert.False(t, admins.IsAdmin(555))

	_, err = ParseAdmins("111,abc")
	assert.Error(t, err)

	var empty Admins
	assert.False(t, empty.IsAdmin(111))
}

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "42,43")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PREMIUM_CHANNEL_LIMIT", "50")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.True(t, cfg.Admins.IsAdmin(42))
	assert.True(t, cfg.Admins.IsAdmin(43))
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 5, cfg.Limits.FreeChannels)
	assert.Equal(t, 50, cfg.Limits.PremiumChannels)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load("testdata/does-not-exist.env")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Postgres.Host = "db"
	cfg.Postgres.Port = 5432
	cfg.Postgres.DB = "bot"
	cfg.Postgres.User = "svc"
	cfg.Postgres.Password = "p@ss:w/rd"
	assert.Equal(t, "postgres://svc:p%40ss%3Aw%2Frd@db:5432/bot?sslmode=disable", cfg.PostgresDSN())

	cfg.Postgres.DSN = " postgres://x@y/z "
	assert.Equal(t, "postgres://x@y/z", cfg.PostgresDSN())
}
