package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/api"
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
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const apiPrefix = "/api/v1"

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		dbErr  error
	)

	BeforeEach(func() {
		dbErr = nil
		base := transport.NewBaseHandler(quietLogger)
		router = chi.NewRouter()

		// services are never reached: every request below stops at the
		// health checks, the category list or the auth middleware
		rest.RegisterAllRoutes(router, base, rest.RouterConfig{
			AllowedOrigins: "*",
			OpenAPI:        api.OpenAPI,
		}, rest.Handlers{
			Health: rest.NewHealthHandler(base, map[string]rest.Check{
				"postgres": func(context.Context) error { return dbErr },
			}),
			Auth:     auth.NewHandler(base, nil),
			User:     user.NewHandler(base, nil),
			Hardware: hardware.NewHandler(base, nil, time.Second),
			Listing:  listing.NewHandler(base, nil, time.Second),
			Claim:    claim.NewHandler(base, nil),
			Impact:   impact.NewHandler(base, nil),
			Category: category.NewHandler(base, category.NewService(quietLogger)),
		})
	})

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	It("documents every mounted API route", func() {
		doc, err := swagger.Load(context.Background(), api.OpenAPI)
		Expect(err).NotTo(HaveOccurred())

		var routes int
		err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, apiPrefix) {
				return nil
			}
			path := strings.TrimSuffix(strings.TrimPrefix(route, apiPrefix), "/")
			item := doc.Paths.Find(path)
			if item == nil {
				return errors.New("undocumented path " + path)
			}
			if item.GetOperation(method) == nil {
				return errors.New("undocumented operation " + method + " " + path)
			}
			routes++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(routes).To(Equal(23))
	})

	It("answers ping without credentials", func() {
		rec := do(http.MethodGet, "/api/v1/ping")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("reports an unhealthy database as 503", func() {
		Expect(do(http.MethodGet, "/api/v1/health").Code).To(Equal(http.StatusOK))

		dbErr = errors.New("connection refused")
		rec := do(http.MethodGet, "/api/v1/health")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Status).To(Equal(rest.HealthUnhealthy))
		Expect(body.Components["postgres"].Message).To(Equal("connection refused"))
	})

	It("serves categories publicly", func() {
		rec := do(http.MethodGet, "/api/v1/categories")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Networking"))
	})

	It("requires a bearer token for marketplace routes", func() {
		for _, path := range []string{"/api/v1/listings", "/api/v1/claims", "/api/v1/leaderboard", "/api/v1/hardware?serial=x"} {
			rec := do(http.MethodGet, path)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized), path)
		}
	})

	It("serves the OpenAPI document", func() {
		rec := do(http.MethodGet, "/openapi.yml")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("openapi: 3.0.3"))
	})
})
