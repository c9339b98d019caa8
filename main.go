package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/checker"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/config"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/handlers"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/health"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/logger"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/middleware"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/router"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/state"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/telegramfile"
	"github.com/BatmanBruc/rtx-toolkit-bot/store"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

func main() {
	cfg, err := config.Load("config.env", ".env")
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("bot stopped with error", zap.Error(err))
	}
	log.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer backend.Close()

	healthz := health.NewHandler(log).Add("database", backend)

	storeOpts := []store.Option{}
	if cfg.Redis.Enabled {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()
		storeOpts = append(storeOpts, store.WithFrozenCache(store.NewRedisFrozenCache(rdb)))
		healthz.Add("redis", rdb)
	}

	st := store.New(backend, cfg.Admins, log, storeOpts...)

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		return errors.Wrap(err, "create bot")
	}

	r := router.New(router.Options{
		Store:    st,
		States:   state.NewMachine(),
		Admins:   cfg.Admins,
		Fetcher:  telegramfile.New(b, log, telegramfile.WithMaxBytes(cfg.MaxDocumentBytes)),
		Frozen:   checker.NewSimulated(st, 0, log),
		Withdraw: checker.NewSimulatedWithdraw(log),
		Limits: router.Limits{
			FreeChannels:    cfg.Limits.FreeChannels,
			PremiumChannels: cfg.Limits.PremiumChannels,
		},
		Logger: log,
	})

	h := handlers.NewHandlers(r, log)
	middlewares := middleware.NewMessageAnalyzer(log)

	handlerChain := middlewares.ResolveChatMiddleware(
		middlewares.AnalyzeMessageMiddleware(
			h.MainHandler,
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	srv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthz.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bot started", zap.String("store", cfg.StoreDriver), zap.Bool("redis", cfg.Redis.Enabled))
		b.Start(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("health server listening", zap.String("addr", cfg.HealthAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthz.SetShutdown(true)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config) (types.Backend, error) {
	if cfg.StoreDriver == "memory" {
		return store.NewMemoryStore(), nil
	}
	return store.NewPostgresStore(ctx, cfg.PostgresDSN())
}
