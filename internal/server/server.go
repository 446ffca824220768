package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"citytwin/internal/config"
	"citytwin/internal/database"
	"citytwin/internal/predict"
	"citytwin/internal/providers"
	"citytwin/internal/store"
)

// Server wires configuration, dependencies and HTTP routing together.
type Server struct {
	cfg        config.Config
	log        zerolog.Logger
	store      store.Store
	validate   *validator.Validate
	predictor  predict.Predictor
	routing    *providers.RoutingClient
	isochrones *providers.IsochroneClient
	chat       *providers.ChatClient
	cache      *providers.RedisCache // nil unless Redis is configured
	aiLimiter  *rate.Limiter
	startedAt  time.Time
}

// New instantiates the HTTP server and prepares shared dependencies. With an
// empty DB_URL the server runs on the in-memory store; with an empty
// REDIS_URL provider caching is disabled.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	var st store.Store
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		st = store.NewPostgres(pool)
		log.Info().Msg("using postgres store")
	} else {
		st = store.NewMemory()
		log.Warn().Msg("DB_URL not set, using in-memory store")
	}

	var cache providers.Cache = providers.NoopCache{}
	var redisCache *providers.RedisCache
	if cfg.Redis.URL != "" {
		rc, err := providers.NewRedisCache(cfg.Redis.URL, cfg.Redis.TTL, log)
		if err != nil {
			st.Close()
			return nil, err
		}
		cache = rc
		redisCache = rc
		log.Info().Dur("ttl", cfg.Redis.TTL).Msg("provider response cache enabled")
	}

	srv := &Server{
		cfg:        cfg,
		log:        log,
		store:      st,
		validate:   newValidator(),
		predictor:  predict.NewHeuristic(),
		routing:    providers.NewRoutingClient(cfg.Routing, cache, log),
		isochrones: providers.NewIsochroneClient(cfg.Mapbox, cache, log),
		chat:       providers.NewChatClient(cfg.AI, log),
		cache:      redisCache,
		aiLimiter:  rate.NewLimiter(rate.Limit(cfg.AI.RateLimit), cfg.AI.RateBurst),
		startedAt:  time.Now().UTC(),
	}
	return srv, nil
}

// Close releases store and cache resources.
func (s *Server) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// Run starts the HTTP server and blocks until the context is cancelled or an
// unrecoverable error occurs.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.HTTP.Address,
		Handler:      s.routes(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	s.log.Info().Str("addr", s.cfg.HTTP.Address).Msg("http server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("latitude", func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(float64)
		if !ok {
			return false
		}
		return val >= -90 && val <= 90
	})
	_ = v.RegisterValidation("longitude", func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(float64)
		if !ok {
			return false
		}
		return val >= -180 && val <= 180
	})
	return v
}
