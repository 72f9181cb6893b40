// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hatbajar/marketplace/internal/ads"
	adsmongo "github.com/hatbajar/marketplace/internal/ads/mongo"
	"github.com/hatbajar/marketplace/internal/catalog"
	catalogmongo "github.com/hatbajar/marketplace/internal/catalog/mongo"
	"github.com/hatbajar/marketplace/internal/config"
	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/identity"
	"github.com/hatbajar/marketplace/internal/identity/jwt"
	identitymongo "github.com/hatbajar/marketplace/internal/identity/mongo"
	"github.com/hatbajar/marketplace/internal/payments"
	paymentsmongo "github.com/hatbajar/marketplace/internal/payments/mongo"
	"github.com/hatbajar/marketplace/internal/payments/stripe"
	"github.com/hatbajar/marketplace/internal/pkg/ctxlog"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
	"github.com/hatbajar/marketplace/internal/pkg/metrics"
	"github.com/hatbajar/marketplace/internal/pkg/mongodb"
	"github.com/hatbajar/marketplace/internal/reviews"
	reviewsmongo "github.com/hatbajar/marketplace/internal/reviews/mongo"
	"github.com/hatbajar/marketplace/internal/version"
	"github.com/hatbajar/marketplace/internal/wishlist"
	wishlistmongo "github.com/hatbajar/marketplace/internal/wishlist/mongo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	client        *mongo.Client
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	adExpirer     *ads.Expirer
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	client, err := mongodb.Connect(connectCtx, mongodb.Config{
		URI:             cfg.Database.URI,
		Database:        cfg.Database.Database,
		MaxPoolSize:     cfg.Database.MaxPoolSize,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db := client.Database(cfg.Database.Database)

	if err := mongodb.EnsureIndexes(connectCtx, db); err != nil {
		disconnect(client)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		client:        client,
		metricsCancel: metricsCancel,
	}

	go app.collectStoreMetrics(metricsCtx)

	router, expirer, err := app.setupRouter(metricsCtx, db)
	if err != nil {
		disconnect(client)
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.adExpirer = expirer

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop the ad expiry sweeper first
	if a.adExpirer != nil {
		a.adExpirer.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	disconnect(a.client)

	return errors.Join(errs...)
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		slog.Error("disconnect mongo client", "error", err)
	}
}

func (a *App) collectStoreMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordStorePing(ctx, a.client)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordStorePing(ctx, a.client)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// AdExpirer returns the ad expiry sweeper instance. Used in tests.
func (a *App) AdExpirer() *ads.Expirer {
	return a.adExpirer
}

func (a *App) setupRouter(ctx context.Context, db *mongo.Database) (*chi.Mux, *ads.Expirer, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	identityRepo := identitymongo.NewRepository(db)
	identityService := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(identityService)

	verifier, err := jwt.NewVerifier(jwt.Config{
		SecretKey: a.config.JWT.SecretKey,
		Issuer:    a.config.JWT.Issuer,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create token verifier: %w", err)
	}

	catalogRepo := catalogmongo.NewRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	reviewsRepo := reviewsmongo.NewRepository(db)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(reviewsService)

	wishlistRepo := wishlistmongo.NewRepository(db)
	wishlistService := wishlist.NewService(wishlistRepo)
	wishlistHandler := wishlist.NewHandler(wishlistService)

	adsRepo := adsmongo.NewRepository(db)
	adsService := ads.NewService(adsRepo)
	adsHandler := ads.NewHandler(adsService)

	adExpirer := ads.NewExpirer(adsRepo, a.config.Ads.SweepInterval)
	adExpirer.Start(ctx)

	stripeClient, err := stripe.NewClient(stripe.Config{
		Enabled:   a.config.Stripe.Enabled,
		SecretKey: a.config.Stripe.SecretKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create stripe client: %w", err)
	}

	if !a.config.Stripe.Enabled {
		slog.Warn("stripe is disabled: payment intents cannot be created")
	}

	paymentsRepo := paymentsmongo.NewRepository(db)
	paymentsService := payments.NewService(paymentsRepo, stripeClient)
	paymentsHandler := payments.NewHandler(paymentsService)

	r.Route("/api/v1", func(r chi.Router) {
		identityHandler.RegisterRoutes(r)

		catalogHandler.RegisterPublicRoutes(r)
		reviewsHandler.RegisterPublicRoutes(r)
		adsHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.Authenticate(verifier))

			identityHandler.RegisterProtectedRoutes(r)
			catalogHandler.RegisterProtectedRoutes(r)
			reviewsHandler.RegisterProtectedRoutes(r)
			wishlistHandler.RegisterProtectedRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RateLimitMiddleware(a.config.RateLimit.RPS, a.config.RateLimit.Burst))
				paymentsHandler.RegisterProtectedRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(identityService, domain.RoleVendor))
				catalogHandler.RegisterVendorRoutes(r)
				adsHandler.RegisterVendorRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(identityService, domain.RoleAdmin))
				identityHandler.RegisterAdminRoutes(r)
				catalogHandler.RegisterAdminRoutes(r)
				adsHandler.RegisterAdminRoutes(r)
			})
		})
	})

	return r, adExpirer, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx, readpref.Primary()); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
