package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	BotToken string `env:"BOT_TOKEN,required"`
	Admins   Admins `env:"ADMIN_IDS"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	Postgres struct {
		DSN      string `env:"POSTGRES_DSN"`
		Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
		DB       string `env:"POSTGRES_DB" envDefault:"rtx_toolkit"`
		User     string `env:"POSTGRES_USER" envDefault:"rtx_toolkit"`
		Password string `env:"POSTGRES_PASSWORD"`
	}

	Redis struct {
		Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Prefix   string `env:"REDIS_PREFIX" envDefault:"rtx_toolkit"`
	}

	HealthAddr       string `env:"HEALTH_ADDR" envDefault:":8081"`
	MaxDocumentBytes int64  `env:"MAX_DOCUMENT_BYTES" envDefault:"20971520"`

	Limits struct {
		FreeChannels    int `env:"FREE_CHANNEL_LIMIT" envDefault:"5"`
		PremiumChannels int `env:"PREMIUM_CHANNEL_LIMIT" envDefault:"100"`
	}
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	// a missing .env is fine, the variables may come from the environment
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	switch cfg.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, errors.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PostgresDSN prefers POSTGRES_DSN and otherwise assembles one from the parts.
func (c *Config) PostgresDSN() string {
	if dsn := strings.TrimSpace(c.Postgres.DSN); dsn != "" {
		return dsn
	}
	p := c.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		escape(p.User), escape(p.Password), p.Host, p.Port, p.DB)
}

func escape(s string) string {
	return strings.NewReplacer("%", "%25", ":", "%3A", "/", "%2F", "@", "%40", "?", "%3F", "#", "%23").Replace(s)
}

// Admins is the static allowlist of bot administrators.
type Admins map[int64]struct{}

func (a *Admins) UnmarshalText(text []byte) error {
	parsed, err := ParseAdmins(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseAdmins(raw string) (Admins, error) {
	out := Admins{}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' })
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "admin id %q", p)
		}
		out[id] = struct{}{}
	}
	return out, nil
}

func (a Admins) IsAdmin(userID int64) bool {
	_, ok := a[userID]
	return ok
}
