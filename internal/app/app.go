package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/config"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/httpserver"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/mailer"
	"github.com/MrSnakeDoc/serene/internal/prompt"
	"github.com/MrSnakeDoc/serene/internal/redis"
	"github.com/MrSnakeDoc/serene/internal/scheduler"
	"github.com/MrSnakeDoc/serene/internal/sources/seed"
	"github.com/MrSnakeDoc/serene/internal/store"
	"github.com/MrSnakeDoc/serene/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/serene/internal/store/redis"
	"github.com/MrSnakeDoc/serene/internal/store/sqlite"
	"github.com/MrSnakeDoc/serene/internal/utils"
	"github.com/MrSnakeDoc/serene/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	server  *httpserver.Server
	store   store.Store
	janitor *scheduler.Janitor
}

// New wires every component from the environment. Any failure is returned
// with the partially opened store closed.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.NewWithOptions(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog,
		File:   cfg.LogFile,
	})

	st, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, loggerClient, st)
	if err != nil {
		utils.Close(st)
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, loggerClient logger.Logger, st store.Store) (*App, error) {
	var m mailer.Mailer = mailer.NewLogMailer(loggerClient)
	if cfg.MailSender != "" {
		ses, err := mailer.NewSESMailer(ctx, cfg.AWSRegion, cfg.MailSender)
		if err != nil {
			return nil, fmt.Errorf("failed to init ses mailer: %w", err)
		}
		m = ses
		loggerClient.Info("password reset mail via SES", logger.String("region", cfg.AWSRegion))
	} else {
		loggerClient.Warn("SERENE_MAIL_SENDER not set, reset links are only logged")
	}

	authSvc := auth.NewService(st, m, auth.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
		ResetTTL: cfg.ResetTTL,
		ResetURL: cfg.ResetURL,
	}, loggerClient)

	var seeds dashboard.SeedSource
	if cfg.SeedEnabled {
		src, err := seed.NewSource(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
		seeds = src
	}

	var backend prompt.Backend
	if cfg.GenAIAPIKey != "" {
		b, err := prompt.NewGenAIBackend(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to init prompt backend: %w", err)
		}
		backend = b
		loggerClient.Info("prompt backend enabled", logger.String("model", cfg.GenAIModel))
	} else {
		loggerClient.Warn("SERENE_GENAI_API_KEY not set, prompts fall back to a fixed suggestion")
	}

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		CORSOrigins:      cfg.CORSOrigins,
		StoreKind:        cfg.Store,
		Store:            st,
		Auth:             authSvc,
		Dashboard:        dashboard.NewService(st, seeds, loggerClient),
		Prompt:           prompt.NewGenerator(backend, cfg.PromptTimeout, loggerClient),
		PromptEnabled:    backend != nil,
		PromptMaxEntries: cfg.PromptMaxEntries,
		AuthRateBurst:    cfg.AuthRateBurst,
		AuthRatePerMin:   cfg.AuthRatePerMin,
	}

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		server:  httpserver.New(cfg, loggerClient, d),
		store:   st,
		janitor: scheduler.NewJanitor(st, loggerClient, cfg.JanitorInterval),
	}, nil
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		// fail fast if Redis never comes up
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		return redisstore.NewStore(client, cfg.ToggleMaxRetries), nil

	case config.StoreSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		loggerClient.Info("SQLite store opened", logger.String("path", cfg.SQLitePath))
		return st, nil

	default:
		loggerClient.Warn("using the in-memory store, data is lost on restart")
		return memory.New(), nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Serene v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Serene %s (commit=%s, built=%s, go=%s, store=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, a.cfg.Store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}
	a.logger.Info("janitor started", logger.Duration("interval", a.cfg.JanitorInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if utils.CloseLogged(a.store, a.logger, "store") {
		a.logger.Info("✅ Store closed cleanly")
	}

	if runErr == nil {
		a.logger.Info("✅ Serene stopped cleanly")
	}
	_ = a.logger.Sync()
	return runErr
}
