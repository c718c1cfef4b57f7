package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"padhai/internal/adapter/repo"
	"padhai/internal/http/handlers"
	httpapi "padhai/internal/http/httpapi"
	"padhai/internal/infra"
	"padhai/internal/infra/credentials"
	"padhai/internal/infra/geoip"
	"padhai/internal/middleware"
	"padhai/internal/providers/genai"
	"padhai/internal/providers/prompt"
	"padhai/internal/providers/veo"
	"padhai/internal/storage"
	"padhai/internal/videogen"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()

	// The database is optional: it backs the history ledger and stored keys.
	var (
		sqlRunner *infra.SQLRunner
		history   *repo.GenerationRepositoryPG
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		sqlRunner = infra.NewSQLRunner(dbpool, logger, cfg.SlowQuery)
		history = repo.NewGenerationRepository(sqlRunner)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare generation ledger")
		}
		logger.Info().Int32("max_conns", dbpool.Stat().MaxConns()).Msg("generation history enabled")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, generation history disabled")
	}

	apiKey := cfg.GeminiAPIKey
	if apiKey == "" && sqlRunner != nil {
		store := credentials.NewStore(sqlRunner)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to prepare integration_tokens")
		} else if apiKey, err = store.GeminiAPIKey(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to load stored gemini api key")
		}
	}
	if apiKey == "" {
		logger.Warn().Msg("no Gemini API key configured, video generation will fail with a configuration error")
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	veoClient, err := veo.NewClient(veo.Options{
		APIKey:     apiKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build veo client")
	}

	textClient, err := genai.NewClient(genai.Options{
		APIKey:     apiKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}
	expander, err := prompt.NewGeminiExpander(prompt.GeminiOptions{
		Client:   textClient,
		Model:    cfg.GeminiTextModel,
		Fallback: prompt.NewStaticExpander(),
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prompt expander")
	}

	var recorder videogen.Recorder
	if history != nil {
		recorder = history
	}
	videos, err := videogen.NewService(videogen.Options{
		Provider:      veoClient,
		Store:         fileStore,
		Recorder:      recorder,
		Logger:        &logger,
		Model:         cfg.VeoModel,
		PublicBaseURL: cfg.PublicBaseURL,
		Poll: videogen.PollConfig{
			Interval:    cfg.VeoPollInterval,
			MaxAttempts: cfg.VeoMaxPollAttempts,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build video service")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, country lookup disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Lookup
	}

	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, "padhai:ratelimit", cfg.RateLimitPerMin, time.Minute)
	}

	app := &handlers.App{
		Videos:   videos,
		Expander: expander,
		Store:    fileStore,
		Logger:   logger,
	}
	if history != nil {
		app.History = history
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
		GenerateLimiter: limiter,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("port", cfg.Port).
		Str("model", videos.Model()).
		Str("storage", fileStore.BasePath()).
		Dur("poll_interval", cfg.VeoPollInterval).
		Int("max_poll_attempts", cfg.VeoMaxPollAttempts).
		Msg("API listening")
	if err := server.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
