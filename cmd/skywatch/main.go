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

	"github.com/joho/godotenv"

	"github.com/sky/skywatch/internal/api"
	"github.com/sky/skywatch/internal/auth"
	"github.com/sky/skywatch/internal/engine"
	"github.com/sky/skywatch/internal/ephemeris"
	"github.com/sky/skywatch/internal/metrics"
	"github.com/sky/skywatch/internal/stream"
	"github.com/sky/skywatch/internal/telemetry"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	addr := os.Getenv("SKYWATCH_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	ephCfg := loadEphemerisConfig(logger)
	store := ephemeris.NewStore()
	var cache *ephemeris.Cache
	if ephCfg.cacheDir != "" {
		cache = ephemeris.NewCache(ephCfg.cacheDir, ephCfg.maxCacheFiles)
	}
	source := ephemeris.NewSource(ephemeris.NewFetcher(ephCfg.sourceURL), store, cache, logger)

	// Seed from the disk cache so predictions work before the first fetch.
	source.LoadCached()

	pollInterval := durationEnv(logger, "SKYWATCH_POLL_INTERVAL", 5*time.Second)
	poller := telemetry.NewPoller(os.Getenv("SKYWATCH_FEED_URL"), pollInterval, logger)

	engCfg := loadEngineConfig(logger)
	eng := engine.New(engCfg, source, poller, logger)

	streamCfg := loadStreamConfig(logger)
	streamHandler := stream.NewHandler(eng, streamCfg, logger)

	srv := api.NewServer(addr, eng, streamHandler, authCfg, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go eng.Run(ctx)

	// Background goroutine to keep the age gauges current between events.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetElementAge(age)
				}
				if snap := eng.Snapshot(); snap != nil && !snap.UpdatedAt.IsZero() {
					metrics.SetFixAge(time.Since(snap.UpdatedAt).Seconds())
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"poll_interval_seconds", pollInterval.Seconds(),
		)
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

func logLevel() slog.Level {
	switch os.Getenv("SKYWATCH_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SKYWATCH_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SKYWATCH_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SKYWATCH_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SKYWATCH_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

type ephemerisConfig struct {
	sourceURL     string
	cacheDir      string
	maxCacheFiles int
}

func loadEphemerisConfig(logger *slog.Logger) ephemerisConfig {
	cfg := ephemerisConfig{
		cacheDir:      "/tmp/skywatch/elements",
		maxCacheFiles: 5,
	}

	if v := os.Getenv("SKYWATCH_ELEMENT_SOURCE_URL"); v != "" {
		cfg.sourceURL = v
	}
	if v := os.Getenv("SKYWATCH_ELEMENT_CACHE_DIR"); v != "" {
		cfg.cacheDir = v
	}
	if v := os.Getenv("SKYWATCH_ELEMENT_CACHE_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYWATCH_ELEMENT_CACHE_MAX_FILES value, using default", "value", v, "default", cfg.maxCacheFiles)
		} else {
			cfg.maxCacheFiles = n
		}
	}

	logger.Info("ephemeris config",
		"source_url", cfg.sourceURL,
		"cache_dir", cfg.cacheDir,
	)
	return cfg
}

func loadEngineConfig(logger *slog.Logger) engine.Config {
	cfg := engine.DefaultConfig()

	if v := os.Getenv("SKYWATCH_TRAIL_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYWATCH_TRAIL_CAP value, using default", "value", v, "default", cfg.TrailCap)
		} else {
			cfg.TrailCap = n
		}
	}

	cfg.ElementRefresh = durationEnv(logger, "SKYWATCH_ELEMENT_REFRESH", cfg.ElementRefresh)
	cfg.OrbitResample = durationEnv(logger, "SKYWATCH_ORBIT_RESAMPLE", cfg.OrbitResample)
	cfg.TerminatorRefresh = durationEnv(logger, "SKYWATCH_TERMINATOR_REFRESH", cfg.TerminatorRefresh)
	cfg.Orbit.Lookahead = durationEnv(logger, "SKYWATCH_ORBIT_LOOKAHEAD", cfg.Orbit.Lookahead)
	cfg.Orbit.Step = durationEnv(logger, "SKYWATCH_ORBIT_STEP", cfg.Orbit.Step)
	cfg.Passes.Lookahead = durationEnv(logger, "SKYWATCH_PASS_LOOKAHEAD", cfg.Passes.Lookahead)
	cfg.Passes.Step = durationEnv(logger, "SKYWATCH_PASS_STEP", cfg.Passes.Step)

	if v := os.Getenv("SKYWATCH_PASS_MIN_ELEVATION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 90 {
			logger.Warn("invalid SKYWATCH_PASS_MIN_ELEVATION value, using default", "value", v, "default", cfg.Passes.MinElevationDeg)
		} else {
			cfg.Passes.MinElevationDeg = f
		}
	}
	if v := os.Getenv("SKYWATCH_PASS_MAX_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYWATCH_PASS_MAX_COUNT value, using default", "value", v, "default", cfg.Passes.MaxPasses)
		} else {
			cfg.Passes.MaxPasses = n
		}
	}
	if v := os.Getenv("SKYWATCH_FOOTPRINT_MIN_ELEVATION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 90 {
			logger.Warn("invalid SKYWATCH_FOOTPRINT_MIN_ELEVATION value, using default", "value", v, "default", cfg.FootprintMinElevDeg)
		} else {
			cfg.FootprintMinElevDeg = f
		}
	}

	logger.Info("engine config",
		"trail_cap", cfg.TrailCap,
		"element_refresh_seconds", cfg.ElementRefresh.Seconds(),
		"orbit_resample_seconds", cfg.OrbitResample.Seconds(),
		"terminator_refresh_seconds", cfg.TerminatorRefresh.Seconds(),
		"pass_lookahead_seconds", cfg.Passes.Lookahead.Seconds(),
		"pass_min_elevation_deg", cfg.Passes.MinElevationDeg,
		"footprint_min_elevation_deg", cfg.FootprintMinElevDeg,
	)
	return cfg
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  30 * time.Second,
	}

	if v := os.Getenv("SKYWATCH_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYWATCH_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", cfg.MaxConcurrentPerIP)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}
	cfg.KeepaliveInterval = durationEnv(logger, "SKYWATCH_STREAM_KEEPALIVE_INTERVAL", cfg.KeepaliveInterval)

	if v := os.Getenv("SKYWATCH_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SKYWATCH_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
		"trust_proxy", cfg.TrustProxy,
	)
	return cfg
}

// durationEnv reads an integer number of seconds from the environment,
// falling back to def on absence or invalid input.
func durationEnv(logger *slog.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid duration value, using default", "key", key, "value", v, "default_seconds", def.Seconds())
		return def
	}
	return time.Duration(n) * time.Second
}
