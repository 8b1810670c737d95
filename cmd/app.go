package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	authPostgres "github.com/frahmantamala/hardware-marketplace/internal/auth/postgres"
	"github.com/frahmantamala/hardware-marketplace/internal/category"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	claimPostgres "github.com/frahmantamala/hardware-marketplace/internal/claim/postgres"
	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	impactPostgres "github.com/frahmantamala/hardware-marketplace/internal/impact/postgres"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	listingPostgres "github.com/frahmantamala/hardware-marketplace/internal/listing/postgres"
	"github.com/frahmantamala/hardware-marketplace/internal/notification"
	"github.com/frahmantamala/hardware-marketplace/internal/user"
	userPostgres "github.com/frahmantamala/hardware-marketplace/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Services is the wired application shared by the server, the seeder and
// the workers.
type Services struct {
	Catalog      hardware.Catalog
	Capabilities *auth.DepartmentCapabilityChecker
	Bus          *events.EventBus
	Notifier     *notification.Dispatcher

	Auth     *auth.Service
	User     *user.Service
	Listing  *listing.Service
	Claim    *claim.Service
	Impact   *impact.Service
	Category *category.Service
}

func newCatalog(cfg internal.HardwareCatalogConfig, lg *slog.Logger) hardware.Catalog {
	var base hardware.Catalog
	switch cfg.Mode {
	case internal.CatalogModeHTTP:
		base = hardware.NewClient(hardware.ClientConfig{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}, lg)
	default:
		base = hardware.NewReferenceCatalog(cfg.MockLatency)
	}
	return hardware.NewSharedCatalog(base)
}

func newNotifier(cfg internal.NotificationConfig, lg *slog.Logger) *notification.Dispatcher {
	var sender notification.Sender = notification.LogSender{Logger: lg}
	if cfg.WebhookURL != "" {
		sender = notification.MultiSender{sender, notification.NewWebhookSender(cfg.WebhookURL, cfg.Timeout)}
	}
	return notification.NewDispatcher(notification.Config{
		Workers:     cfg.Workers,
		QueueSize:   cfg.QueueSize,
		SendTimeout: cfg.Timeout,
	}, sender, lg)
}

func buildServices(cfg *internal.Config, gdb *gorm.DB, sdb *sqlx.DB, lg *slog.Logger) *Services {
	capabilities := auth.NewCapabilityChecker(cfg.Marketplace.SecurityKeyword)
	catalog := newCatalog(cfg.HardwareCatalog, lg)

	bus := events.NewEventBus(lg)
	notifier := newNotifier(cfg.Notification, lg)
	notifier.Subscribe(bus)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	return &Services{
		Catalog:      catalog,
		Capabilities: capabilities,
		Bus:          bus,
		Notifier:     notifier,
		Auth:         auth.NewService(authPostgres.NewRepository(gdb), tokens, cfg.Security.BCryptCost, lg),
		User:         user.NewService(userPostgres.NewUserRepository(gdb), capabilities, lg),
		Listing:      listing.NewService(listingPostgres.NewListingRepository(gdb), catalog, capabilities, bus, lg),
		Claim:        claim.NewService(claimPostgres.NewClaimRepository(gdb), capabilities, bus, lg),
		Impact:       impact.NewService(impactPostgres.NewStatsReader(sdb), lg),
		Category:     category.NewService(lg),
	}
}

// Start launches the background notification workers.
func (s *Services) Start() {
	s.Notifier.Start()
}

// Close lets in-flight event handlers and notifications finish before the
// workers stop.
func (s *Services) Close(ctx context.Context) {
	lg := slog.Default()
	if err := s.Bus.Wait(ctx); err != nil {
		lg.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := s.Notifier.Flush(ctx); err != nil {
		lg.Warn("notifications still pending at shutdown", "error", err)
	}
	s.Notifier.Shutdown()
}
