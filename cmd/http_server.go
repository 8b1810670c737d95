package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hardware-marketplace/api"
	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/category"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	"github.com/frahmantamala/hardware-marketplace/internal/transport/rest"
	"github.com/frahmantamala/hardware-marketplace/internal/transport/swagger"
	"github.com/frahmantamala/hardware-marketplace/internal/user"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Services *Services
	Sweeper  *listing.ExpirySweeper
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps.Services.Start()
	deps.Sweeper.Start(ctx)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", addr, "catalog_mode", deps.Config.HardwareCatalog.Mode)
		serverErrChan <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		deps.Logger.Info("received signal, shutting down")
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("server shutdown error", "error", err)
	}
	deps.Sweeper.Stop()
	deps.Services.Close(shutdownCtx)
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close error", "error", err)
	}

	deps.Logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	svc := deps.Services
	base := transport.NewBaseHandler(deps.Logger)

	health := rest.NewHealthHandler(base, map[string]rest.Check{
		"postgres": rest.PingCheck(deps.DB),
		"hardware_catalog": func(ctx context.Context) error {
			return hardware.Probe(ctx, svc.Catalog)
		},
	})

	rest.RegisterAllRoutes(deps.Router, base, rest.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPI:        api.OpenAPI,
	}, rest.Handlers{
		Health:   health,
		Auth:     auth.NewHandler(base, svc.Auth),
		User:     user.NewHandler(base, svc.User),
		Hardware: hardware.NewHandler(base, svc.Catalog, cfg.HardwareCatalog.Timeout),
		Listing:  listing.NewHandler(base, svc.Listing, cfg.Marketplace.RequestTimeout),
		Claim:    claim.NewHandler(base, svc.Claim),
		Impact:   impact.NewHandler(base, svc.Impact),
		Category: category.NewHandler(base, svc.Category),
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	if _, err := swagger.Load(context.Background(), api.OpenAPI); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	services := buildServices(config, gdb, db, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   chi.NewRouter(),
		Services: services,
		Sweeper:  listing.NewExpirySweeper(services.Listing, config.Marketplace.ExpiryInterval, lg),
		Logger:   lg,
	}, nil
}
