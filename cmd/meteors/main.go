package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/api"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/assess"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/auth"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/config"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/tracing"
	"github.com/Ronin-2099/Chance-of-Meteors/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("METEORS_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	policy, err := loadPolicy(logger)
	if err != nil {
		logger.Error("invalid safety policy", "error", err)
		os.Exit(1)
	}
	calc, err := deflection.NewCalculator(deflection.SI, policy)
	if err != nil {
		logger.Error("invalid safety policy", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv(logger), logger)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}
	defer tracing.Shutdown(shutdownTracing, logger)

	client := neows.NewClient(loadNeoWsConfig(logger), logger)
	feedCfg := loadFeedConfig(logger)
	store := neows.NewStore()
	feedCache := neows.NewCache(feedCfg.CacheDir, feedCfg.MaxFiles)
	refresher := neows.NewRefresher(client, store, feedCache, feedCfg.Days, logger)

	// Attempt to load cached feed data on startup.
	if ds, err := refresher.LoadCached(); err != nil {
		logger.Info("no feed cache found, starting without feed data", "error", err)
	} else {
		logger.Info("loaded feed from cache", "count", len(ds.Approaches), "cached_at", ds.FetchedAt.Format(time.RFC3339))
	}

	assessCfg := loadAssessConfig(logger)
	assessor := assess.NewAssessor(store, client, calc, assessCfg, logger)

	srv := api.NewServer(addr, logger, authCfg, feedCfg.EnableFetch, loadTrustProxy(logger), api.Deps{
		Looker:    client,
		Store:     store,
		Refresher: refresher,
		Assessor:  assessor,
		Calc:      calc,
		Web:       web.Content,
	})

	if feedCfg.EnableFetch {
		go func() {
			if _, err := refresher.Refresh(ctx); err != nil {
				logger.Warn("initial feed refresh failed", "error", err)
			}
			refresher.Run(ctx, feedCfg.RefreshInterval)
		}()
	}

	// Background goroutine to update feed age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := store.AgeSeconds()
				if age >= 0 {
					metrics.SetFeedAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "feed_fetch_enabled", feedCfg.EnableFetch)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("METEORS_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("METEORS_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("METEORS_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("METEORS_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadTrustProxy(logger *slog.Logger) bool {
	v := os.Getenv("METEORS_TRUST_PROXY")
	if v == "" {
		return false
	}
	trust, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid METEORS_TRUST_PROXY value, defaulting to false", "value", v)
		return false
	}
	return trust
}

// loadPolicy reads the optional policy file, then applies the margin override.
func loadPolicy(logger *slog.Logger) (deflection.Policy, error) {
	policy := deflection.DefaultPolicy

	if path := os.Getenv("METEORS_POLICY_FILE"); path != "" {
		p, err := config.LoadPolicyFile(path)
		if err != nil {
			return policy, err
		}
		policy = p
	}

	if v := os.Getenv("METEORS_SAFETY_MARGIN_AU"); v != "" {
		margin, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logger.Warn("invalid METEORS_SAFETY_MARGIN_AU value, keeping policy margin", "value", v, "margin_au", policy.MarginAU)
		} else {
			policy.MarginAU = margin
		}
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}

	logger.Info("safety policy",
		"earth_aphelion_au", policy.EarthAphelionAU,
		"margin_au", policy.MarginAU,
		"threshold_au", policy.ThresholdAU(),
	)
	return policy, nil
}

func loadNeoWsConfig(logger *slog.Logger) neows.Config {
	cfg := neows.Config{
		BaseURL: neows.DefaultBaseURL,
		APIKey:  neows.DefaultAPIKey,
		Rate:    1,
		Burst:   2,
		Timeout: 30 * time.Second,
	}

	if v := os.Getenv("METEORS_NASA_API_KEY"); v != "" {
		cfg.APIKey = v
	}

	if v := os.Getenv("METEORS_NASA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv("METEORS_NASA_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			logger.Warn("invalid METEORS_NASA_RATE value, using default", "value", v, "default", cfg.Rate)
		} else {
			cfg.Rate = r
		}
	}

	if v := os.Getenv("METEORS_NASA_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid METEORS_NASA_BURST value, using default", "value", v, "default", cfg.Burst)
		} else {
			cfg.Burst = n
		}
	}

	if cfg.APIKey == neows.DefaultAPIKey {
		logger.Warn("using NASA demo API key, requests are heavily rate limited")
	}

	logger.Info("neows config",
		"base_url", cfg.BaseURL,
		"rate_per_second", cfg.Rate,
		"burst", cfg.Burst,
	)

	return cfg
}

// feedConfig holds close-approach feed configuration.
type feedConfig struct {
	EnableFetch     bool
	Days            int
	RefreshInterval time.Duration
	CacheDir        string
	MaxFiles        int
}

func loadFeedConfig(logger *slog.Logger) feedConfig {
	cfg := feedConfig{
		EnableFetch:     true,
		Days:            neows.MaxFeedDays,
		RefreshInterval: time.Hour,
		CacheDir:        "/tmp/meteors/feed",
		MaxFiles:        5,
	}

	if v := os.Getenv("METEORS_ENABLE_FEED_FETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid METEORS_ENABLE_FEED_FETCH value, defaulting to false", "value", v)
			cfg.EnableFetch = false
		} else {
			cfg.EnableFetch = enabled
		}
	}

	if v := os.Getenv("METEORS_FEED_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > neows.MaxFeedDays {
			logger.Warn("invalid METEORS_FEED_DAYS value, using default", "value", v, "default", cfg.Days)
		} else {
			cfg.Days = n
		}
	}

	if v := os.Getenv("METEORS_FEED_REFRESH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 60 {
			logger.Warn("invalid METEORS_FEED_REFRESH value, using default", "value", v, "default", 3600)
		} else {
			cfg.RefreshInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("METEORS_FEED_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if v := os.Getenv("METEORS_FEED_CACHE_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid METEORS_FEED_CACHE_MAX_FILES value, using default", "value", v, "default", cfg.MaxFiles)
		} else {
			cfg.MaxFiles = n
		}
	}

	logger.Info("feed config",
		"enable_fetch", cfg.EnableFetch,
		"days", cfg.Days,
		"refresh_seconds", cfg.RefreshInterval.Seconds(),
		"cache_dir", cfg.CacheDir,
		"max_files", cfg.MaxFiles,
	)

	return cfg
}

func loadAssessConfig(logger *slog.Logger) assess.Config {
	cfg := assess.Config{Workers: 4}

	if v := os.Getenv("METEORS_ASSESS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid METEORS_ASSESS_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	logger.Info("assessment config", "workers", cfg.Workers)

	return cfg
}
