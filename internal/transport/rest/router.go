package rest

import (
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/category"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	"github.com/frahmantamala/hardware-marketplace/internal/transport/middleware"
	"github.com/frahmantamala/hardware-marketplace/internal/transport/swagger"
	"github.com/frahmantamala/hardware-marketplace/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything RegisterAllRoutes mounts. A nil handler leaves
// its routes unregistered.
type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Hardware *hardware.Handler
	Listing  *listing.Handler
	Claim    *claim.Handler
	Impact   *impact.Handler
	Category *category.Handler
}

type RouterConfig struct {
	AllowedOrigins string
	OpenAPI        []byte
}

func RegisterAllRoutes(router chi.Router, base *transport.BaseHandler, cfg RouterConfig, h Handlers) {
	// outermost first: the request id must exist before anything logs
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery(base))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if len(cfg.OpenAPI) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(cfg.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Hardware != nil {
				pr.Get("/hardware", h.Hardware.Lookup)
			}

			if h.Listing != nil {
				pr.Route("/listings", func(lr chi.Router) {
					lr.Get("/", h.Listing.List)
					lr.Post("/", h.Listing.Create)
					lr.Get("/{id}", h.Listing.Get)
					lr.Patch("/{id}", h.Listing.Update)
					lr.Delete("/{id}", h.Listing.Delete)
				})
			}

			if h.Claim != nil {
				pr.Route("/claims", func(cr chi.Router) {
					cr.Get("/", h.Claim.List)
					cr.Post("/", h.Claim.Create)
					cr.Get("/{id}", h.Claim.Get)
					cr.Patch("/{id}/owner-approve", h.Claim.ApproveOwner)
					cr.Patch("/{id}/security-approve", h.Claim.ApproveSecurity)
					cr.Patch("/{id}/deny", h.Claim.Deny)
					cr.Patch("/{id}/cancel", h.Claim.Cancel)
					cr.Patch("/{id}/ship", h.Claim.Ship)
				})
			}

			if h.Impact != nil {
				pr.Get("/leaderboard", h.Impact.GetLeaderboard)
				pr.Get("/impact", h.Impact.GetTotals)
			}
		})
	})
}
