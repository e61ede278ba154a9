package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"corvid/internal/domain/allocation"
	"corvid/internal/domain/contracts"
	"corvid/internal/domain/directory"
	"corvid/internal/domain/payout"
	"corvid/internal/domain/reports"
	"corvid/internal/platform/config"
	"corvid/internal/platform/db"
	"corvid/internal/platform/metrics"
	"corvid/internal/transport/http/api"
	allocationhandler "corvid/internal/transport/http/handlers/allocation"
	contractshandler "corvid/internal/transport/http/handlers/contracts"
	directoryhandler "corvid/internal/transport/http/handlers/directory"
	payouthandler "corvid/internal/transport/http/handlers/payout"
	reportshandler "corvid/internal/transport/http/handlers/reports"
	"corvid/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	collector *metrics.Collector
}

// New builds a fully wired application without binding a listener, so tests
// can mount App.Router on httptest servers.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, DB: pool, collector: metrics.New()}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) buildRouter() http.Handler {
	cfg := a.Config
	pool := a.DB

	directoryStore := directory.NewStore(pool)
	contractsStore := contracts.NewStore(pool)
	contractsService := contracts.NewService(contractsStore, directoryStore)
	allocationService := allocation.NewService(pool, contractsStore)
	payoutService := payout.NewService(pool, allocationService, directoryStore)
	reportsStore := reports.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.WithIdentity(cfg.IdentitySecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		directoryhandler.NewHandler(directoryStore).RegisterRoutes(r)
		contractshandler.NewHandler(contractsService).RegisterRoutes(r)
		allocationhandler.NewHandler(allocationService).RegisterRoutes(r)
		payouthandler.NewHandler(payoutService, cfg.ExportDir).RegisterRoutes(r)
		reportshandler.NewHandler(reportsStore, cfg.ExportDir).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, a.collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

// Run wires the application from the ambient environment and serves it until
// the process exits. main delegates here.
func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("corvid server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
