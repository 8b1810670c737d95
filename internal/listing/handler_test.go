package listing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Listing Handler", func() {
	var (
		repo    *mockRepository
		router  chi.Router
		infra   = &auth.User{ID: 1, Department: "IT Infrastructure"}
		asInfra func(*http.Request) *http.Request
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service := listing.NewService(repo, hardware.NewReferenceCatalog(0), auth.NewCapabilityChecker("security"), nil, quietLogger)
		service.SetClock(func() time.Time { return today })
		h := listing.NewHandler(transport.NewBaseHandler(quietLogger), service, time.Second)

		router = chi.NewRouter()
		router.Get("/listings", h.List)
		router.Post("/listings", h.Create)
		router.Get("/listings/{id}", h.Get)
		router.Patch("/listings/{id}", h.Update)
		router.Delete("/listings/{id}", h.Delete)

		asInfra = func(r *http.Request) *http.Request {
			return r.WithContext(auth.ContextWithUser(context.Background(), infra))
		}
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("creates a listing and returns 201", func() {
		body, _ := json.Marshal(validDTO("STG-DISK-SHELF-001"))
		rec := serve(asInfra(httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		var got listing.Listing
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got.Status).To(Equal(listing.StatusAvailable))
		Expect(got.Department).To(Equal("IT Infrastructure"))
	})

	It("answers 403 with policy details for storage media", func() {
		dto := validDTO("STG-NETAPP-FAS2650-001")
		dto.Category = hardware.CategoryStorage
		body, _ := json.Marshal(dto)
		rec := serve(asInfra(httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("STORAGE_MEDIA_BLOCKED"))
		Expect(rec.Body.String()).To(ContainSubstring("24x 1.8TB SAS HDD"))
	})

	It("requires an authenticated user to create", func() {
		body, _ := json.Marshal(validDTO("STG-DISK-SHELF-001"))
		rec := serve(httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body)))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("filters by category and treats 'all' as no filter", func() {
		repo.put(&listing.Listing{SerialNumber: "A", Title: "Switch", Category: hardware.CategoryNetworking, Status: listing.StatusAvailable})
		repo.put(&listing.Listing{SerialNumber: "B", Title: "Server", Category: hardware.CategoryServer, Status: listing.StatusAvailable})

		var got []listing.Listing
		rec := serve(httptest.NewRequest(http.MethodGet, "/listings?category=Server", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got).To(HaveLen(1))

		rec = serve(httptest.NewRequest(http.MethodGet, "/listings?category=all", nil))
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got).To(HaveLen(2))
	})

	It("rejects an unknown category filter", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/listings?category=Laptop", nil))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_CATEGORY"))
	})

	It("returns listing detail with impact", func() {
		l := repo.put(&listing.Listing{SerialNumber: "A", Category: hardware.CategoryNetworking, Status: listing.StatusAvailable})
		rec := serve(httptest.NewRequest(http.MethodGet, "/listings/"+itoa(l.ID), nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var got map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got["impact"]).To(HaveKeyWithValue("co2SavedKg", 300.0))
		Expect(got["impact"]).To(HaveKeyWithValue("daysOfElectricity", 10.0))
	})

	It("answers 404 for unknown listings and 400 for bad ids", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/listings/99", nil)).Code).To(Equal(http.StatusNotFound))
		Expect(serve(httptest.NewRequest(http.MethodGet, "/listings/abc", nil)).Code).To(Equal(http.StatusBadRequest))
	})

	It("deletes with 204", func() {
		l := repo.put(&listing.Listing{SerialNumber: "A", Department: "IT Infrastructure", Status: listing.StatusAvailable})
		rec := serve(asInfra(httptest.NewRequest(http.MethodDelete, "/listings/"+itoa(l.ID), nil)))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("patches descriptive fields", func() {
		l := repo.put(&listing.Listing{SerialNumber: "A", Title: "Old", Department: "IT Infrastructure", Status: listing.StatusAvailable})
		rec := serve(asInfra(httptest.NewRequest(http.MethodPatch, "/listings/"+itoa(l.ID), bytes.NewBufferString(`{"location":"DC-9"}`))))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"location":"DC-9"`))
	})
})
