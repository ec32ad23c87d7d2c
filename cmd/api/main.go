package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/niledreams/backend-travel/internal/auth"
	"github.com/niledreams/backend-travel/internal/cache"
	"github.com/niledreams/backend-travel/internal/cart"
	"github.com/niledreams/backend-travel/internal/catalog"
	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/config"
	"github.com/niledreams/backend-travel/internal/events"
	"github.com/niledreams/backend-travel/internal/health"
	"github.com/niledreams/backend-travel/internal/lock"
	"github.com/niledreams/backend-travel/internal/notify"
	"github.com/niledreams/backend-travel/internal/obs"
	"github.com/niledreams/backend-travel/internal/ratelimit"
	"github.com/niledreams/backend-travel/internal/reviews"
	"github.com/niledreams/backend-travel/internal/rewards"
	"github.com/niledreams/backend-travel/internal/security"
	"github.com/niledreams/backend-travel/internal/seo"
	"github.com/niledreams/backend-travel/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := obs.NewLogger("json", "info")
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)
	logger.Info().Str("env", cfg.AppEnv).Str("port", cfg.Port).Msg("starting travel api")

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "travel-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("init tracer")
		}
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutCtx); err != nil {
				logger.Warn().Err(err).Msg("tracer shutdown")
			}
		}()
	}

	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database url")
	}
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "travel-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Warn().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		logger.Warn().Err(err).Msg("instrument redis metrics")
	}

	st := store.New(pool)
	validate := validator.New()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Username: redisOpts.Username,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})
	defer func() { _ = asynqClient.Close() }()

	bus := &events.Bus{
		Store:     st,
		Scheduler: notify.Scheduler{Client: asynqClient},
	}

	catalogSvc := &catalog.Service{
		Queries:        st,
		Cache:          cache.New(rdb, cfg.CatalogCacheTTL),
		WhatsAppNumber: cfg.WhatsAppNumber,
	}
	rewardsSvc := &rewards.Service{
		Store: st,
		Cache: cache.New(rdb, cfg.RewardsCacheTTL),
	}
	reviewsSvc := &reviews.Service{Queries: st, Bus: bus, Validate: validate}
	seoSvc := &seo.Service{Queries: st}
	authSvc := auth.NewService(st, cfg.JWTSecret, cfg.AccessTokenTTL)

	cartSvc := &cart.Service{
		Repo:           &cart.PGRepo{Store: st},
		Rewards:        rewardsSvc,
		Lock:           lock.Locker{R: rdb},
		Bus:            bus,
		Validate:       validate,
		Logger:         logger,
		Policy:         cfg.RedemptionPolicy,
		Currency:       cfg.Currency,
		WhatsAppNumber: cfg.WhatsAppNumber,
		MaxAdults:      cfg.MaxAdults,
		MaxChildren:    cfg.MaxChildren,
		MaxInfants:     cfg.MaxInfants,
		LockTTL:        cfg.CartLockTTL,
	}

	cartHandler := &cart.Handler{
		Service:        cartSvc,
		CookieName:     cfg.CartCookieName,
		CookieTTL:      cfg.CartCookieTTL,
		CookieDomain:   cfg.CookieDomain,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: cfg.CookieSameSite,
	}
	catalogHandler := &catalog.Handler{Service: catalogSvc}
	reviewsHandler := &reviews.Handler{Service: reviewsSvc}
	seoHandler := &seo.Handler{Service: seoSvc}
	authHandler := &auth.Handler{Service: authSvc}
	staffOnly := auth.Middleware{Service: authSvc}

	csrf := security.CSRF{
		Header: cfg.CSRFHeader,
		Cookie: cfg.CSRFCookie,
		Secure: cfg.CookieSecure,
	}
	idem := common.Idem{R: rdb, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: rdb, Prefix: "bkg:rl:cart"},
		Config: ratelimit.Config{
			Key:    common.ClientIP,
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", cfg.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(seoSvc.RedirectMiddleware)

	checker := readinessChecker{pool: pool, redis: rdb}
	r.Get("/health/live", health.Handler{}.Live)
	r.Get("/health/ready", health.Handler{Checker: checker}.Ready)
	r.Handle("/metrics", promhttp.Handler())

	if user := os.Getenv("PPROF_BASIC_AUTH_USER"); user != "" {
		creds := map[string]string{user: os.Getenv("PPROF_BASIC_AUTH_PASS")}
		r.Group(func(r chi.Router) {
			r.Use(middleware.BasicAuth("pprof", creds))
			r.Mount("/debug", middleware.Profiler())
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trips", catalogHandler.Trips)
		r.Get("/trips/{slug}", catalogHandler.TripDetail)
		r.Get("/trips/{slug}/related", catalogHandler.Related)
		r.Get("/destinations", catalogHandler.Destinations)

		r.Get("/trips/{slug}/reviews", reviewsHandler.List)
		r.With(limiter.Middleware).Post("/trips/{slug}/reviews", reviewsHandler.Submit)

		r.Get("/seo/resolve", seoHandler.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(csrf.EnsureCookie)
			r.Use(cartHandler.WithCart)

			r.Get("/cart", cartHandler.Get)
			r.Get("/rewards", cartHandler.Rewards)

			r.Group(func(r chi.Router) {
				r.Use(csrf.Middleware)
				r.Use(limiter.Middleware)
				r.Use(idem.Middleware)

				r.Patch("/cart/contact", cartHandler.UpdateContact)
				r.Post("/cart/entries", cartHandler.CreateEntry)
				r.Patch("/cart/entries/{entryID}", cartHandler.UpdateEntry)
				r.Delete("/cart/entries/{entryID}", cartHandler.DeleteEntry)
				r.Post("/cart/reward/apply", cartHandler.ApplyReward)
				r.Post("/cart/reward/remove", cartHandler.RemoveReward)
				r.Post("/cart/quick-add/{tripSlug}", cartHandler.QuickAdd)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/auth/login", authHandler.Login)

			r.Route("/seo/entries", func(r chi.Router) {
				r.Use(staffOnly.RequireStaff)
				r.Get("/", seoHandler.List)
				r.Put("/", seoHandler.Upsert)
				r.Delete("/{id}", seoHandler.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
		return
	}

	health.SetReady(false)
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type readinessChecker struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.pool.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
