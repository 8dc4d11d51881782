package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"pricehunt-engine/internal/browser"
	"pricehunt-engine/internal/config"
	"pricehunt-engine/internal/events"
	"pricehunt-engine/internal/httpapi"
	"pricehunt-engine/internal/jobs"
	"pricehunt-engine/internal/llm"
	"pricehunt-engine/internal/logging"
	"pricehunt-engine/internal/match"
	"pricehunt-engine/internal/reconcile"
	"pricehunt-engine/internal/scrape"
	"pricehunt-engine/internal/scrape/util"
	"pricehunt-engine/internal/secrets"
	"pricehunt-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Engine data dir: env if provided, else the working directory.
	dataDir := os.Getenv("PRICEHUNT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already using %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config (%s): %w", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	if cfg.Logger.FileEnable && !filepath.IsAbs(cfg.Logger.Filename) {
		cfg.Logger.Filename = filepath.Join(dataDir, cfg.Logger.Filename)
	}
	flush, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" && dsn == "" {
		dsn = filepath.Join(dataDir, "pricehunt.db")
	}
	db, err := store.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cache, closeCache, err := openCache(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeCache()

	completer, err := llm.New(cfg, func() (string, error) {
		return secrets.GetLLMKey(cfgVal.Load().(config.Config).LLM.KeyringAccount)
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	if _, err := secrets.GetLLMKey(cfg.LLM.KeyringAccount); errors.Is(err, secrets.ErrNoLLMKey) {
		zap.L().Warn("no LLM API key yet; matching will degrade until one is stored",
			zap.String("provider", cfg.LLM.Provider))
	}
	oracle := match.NewOracle(completer, cfg.Match.Retries, time.Duration(cfg.Match.RetryDelayMs)*time.Millisecond)
	engine := reconcile.New(oracle, cache, reconcile.Options{
		Threshold: cfg.Match.Threshold,
		BatchSize: cfg.Match.BatchSize,
		Exclude:   cfg.Match.Exclude,
	})

	limiter := util.NewHostLimiter(cfg.Scrape.HostRPS, 1)

	hub := events.NewHub()
	ctl := jobs.NewController(jobs.Deps{
		Store:               db,
		Launcher:            browser.NewRodLauncher(browser.OptionsFromConfig(cfg)),
		Runner:              scrape.NewRunner(cfg, limiter),
		Engine:              engine,
		Events:              hub,
		DefaultMarketplaces: cfg.Scrape.Marketplaces,
		ProgressEvery:       time.Duration(cfg.Jobs.ProgressEverySec) * time.Second,
	})
	if n, err := jobs.FailInterrupted(ctx, db); err != nil {
		return err
	} else if n > 0 {
		zap.L().Warn("marked jobs from a previous run as failed", zap.Int("jobs", n))
	}
	dispatcher, err := jobs.NewDispatcher(ctl, db, cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		return err
	}

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dataDir, "shutdown.token"), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write shutdown token: %w", err)
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler: httpapi.Handler(httpapi.Deps{
			Store:       db,
			Jobs:        dispatcher,
			Hub:         hub,
			CfgVal:      &cfgVal,
			UserCfgPath: userCfgPath,
			LoadCfg:     loadCfg,
			Shutdown:    shutdownHandler(token, stop),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	zap.L().Info("engine listening",
		zap.String("addr", "http://"+addr),
		zap.String("data_dir", dataDir),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Backend),
		zap.Strings("marketplaces", scrape.Names()))

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutCtx); err != nil {
		zap.L().Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutCtx); err != nil {
		zap.L().Warn("jobs still running at shutdown were canceled", zap.Error(err))
	}
	return nil
}

// openCache picks the match cache backend. The returned func releases it.
func openCache(ctx context.Context, cfg config.Config, db *store.DB) (match.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := match.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case "none":
		return match.NoCache{}, func() {}, nil
	default:
		return db.MatchCache(), func() {}, nil
	}
}
