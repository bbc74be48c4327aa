package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	limiter "github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-pricing/internal/app"
	"github.com/noah-isme/toko-pricing/internal/auth"
	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/checkout"
	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/config"
	"github.com/noah-isme/toko-pricing/internal/discount"
	"github.com/noah-isme/toko-pricing/internal/health"
	"github.com/noah-isme/toko-pricing/internal/jobs"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/ratelimit"
	"github.com/noah-isme/toko-pricing/internal/resilience"
	"github.com/noah-isme/toko-pricing/internal/security"
	"github.com/noah-isme/toko-pricing/internal/shop"
	"github.com/noah-isme/toko-pricing/internal/tax"
)

const serviceName = "toko-pricing-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdownTracing, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("tracing disabled")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.Error().Err(err).Msg("flush traces")
				}
			}()
		}
	}

	if cfg.MigrateOnStart {
		if err := app.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	deps, err := app.Open(context.Background(), cfg, logger, app.Options{AppName: serviceName, RedisMetrics: cfg.Obs.MetricsEnabled})
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close()

	hosts, err := shop.ParseHosts(cfg.ShopHosts)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse shop hosts")
	}
	shopResolver := shop.NewResolver(shop.DefaultHeader, hosts, cfg.DefaultShopID)

	asynqOpt, err := app.AsynqRedisOpt(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure task client")
	}
	taskClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()
	warmScheduler := jobs.Scheduler{
		Client: taskClient,
		Queue:  cfg.WorkerQueue,
		Delay:  cfg.WarmDelay,
		Unique: cfg.WarmDelay + cfg.WarmLockTTL,
		Logger: logger,
	}

	resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, nil)
	cacheBreaker := resilience.NewBreaker("redis_cache", 20, 0.5, 30*time.Second).WithLogger(logger)
	discountStore := &discount.PGStore{
		Q:      deps.Queries,
		Cache:  cache.New(deps.Redis, "discounts", cfg.CacheTTL).WithBreaker(cacheBreaker),
		Logger: logger,
	}
	taxStore := &tax.PGStore{
		Q:      deps.Queries,
		Cache:  cache.New(deps.Redis, "tax_zones", cfg.CacheTTL).WithBreaker(cacheBreaker),
		Logger: logger,
	}

	discountSvc := &discount.Service{Resolver: &discount.Resolver{Store: discountStore}, Logger: logger}
	taxCalc := &tax.Calculator{Store: taxStore, Logger: logger}
	quoteSvc := &checkout.Service{Discounts: discountSvc, Tax: taxCalc, Logger: logger}

	discountHandler := &discount.Handler{Svc: discountSvc, Logger: logger}
	taxHandler := &tax.Handler{Calc: taxCalc, Logger: logger}
	quoteHandler := &checkout.Handler{Svc: quoteSvc, Logger: logger}
	discountAdmin := &discount.AdminHandler{Q: deps.Queries, Cache: discountStore, Warm: warmScheduler, Logger: logger}
	taxAdmin := &tax.AdminHandler{Q: deps.Queries, Cache: taxStore, Warm: warmScheduler, Logger: logger}

	authMiddleware := auth.Middleware{AdminKey: auth.AdminKey{Hash: cfg.AdminKeyHash}, Logger: logger}
	if cfg.TokensEnabled() {
		authMiddleware.Tokens = &auth.Tokens{
			Secret:    []byte(cfg.JWTSecret),
			Issuer:    cfg.JWTIssuer,
			Audience:  cfg.JWTAudience,
			ClockSkew: cfg.JWTClockSkew,
		}
	}
	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}
	codeLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: deps.Redis, Prefix: "pricing:rl"},
		Config: ratelimit.Config{
			Scope:  "discount_code",
			Key:    ratelimit.ShopClientKey,
			Window: cfg.CodeApplyWindow,
			Max:    cfg.CodeApplyMax,
		},
		Logger: logger,
	}

	limiterStore, err := app.NewLimiterStore(deps.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure rate limiter store")
	}
	globalLimiter, err := app.NewLimiter(limiterStore, cfg.GlobalRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure global rate limit")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.Obs.MetricsEnabled {
		httpMetrics := obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.Obs.HSTS}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", shop.DefaultHeader, auth.AdminKeyHeader, common.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Obs.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Obs.PprofEnabled {
		r.Mount("/debug", obs.PprofHandler(cfg.Obs.PprofUser, cfg.Obs.PprofPass))
	}

	healthHandler := health.Handler{
		Probes: map[string]health.Probe{
			"db":    health.PoolProbe(deps.DB),
			"redis": health.RedisProbe(deps.Redis),
		},
		Timeout: cfg.Obs.ReadyTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Group(func(api chi.Router) {
		api.Use(globalLimit(globalLimiter))
		api.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		api.Use(shopResolver.Middleware)

		api.Route("/api/v1", func(v chi.Router) {
			v.Group(func(store chi.Router) {
				store.Use(authMiddleware.Authenticate)
				store.With(codeLimit.Middleware).Post("/discounts/apply", discountHandler.Apply)
				store.Post("/discounts/automatic", discountHandler.Automatic)
				store.Post("/tax/calculate", taxHandler.Calculate)
				store.Post("/tax/included", taxHandler.Included)
				store.Post("/cart/quote", quoteHandler.Quote)
			})

			v.Route("/admin", func(admin chi.Router) {
				admin.Use(authMiddleware.RequireAdmin)
				admin.Get("/discounts", discountAdmin.List)
				admin.Get("/tax-zones", taxAdmin.List)
				admin.Group(func(w chi.Router) {
					w.Use(idem.Middleware)
					w.Post("/discounts", discountAdmin.Create)
					w.Put("/discounts/{id}", discountAdmin.Update)
					w.Post("/tax-zones", taxAdmin.Create)
				})
			})
		})
	})

	var handler http.Handler = r
	if tracingEnabled {
		handler = otelhttp.NewHandler(r, serviceName)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// globalLimit applies the per-IP request budget shared by every storefront
// and admin route.
func globalLimit(l *limiter.Limiter) func(http.Handler) http.Handler {
	mw := limiterhttp.NewMiddleware(l,
		limiterhttp.WithKeyGetter(common.ClientIP),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
		}),
		limiterhttp.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, _ error) {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rate limiter unavailable", nil)
		}),
	)
	return mw.Handler
}
