package claim_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Claim Handler", func() {
	var (
		repo   *mockRepository
		router chi.Router
	)

	as := func(u *auth.User, method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(context.Background(), u))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repo = newMockRepository()
		repo.addListing(&listing.Listing{ID: 10, Title: "ProLiant", Department: "IT Infrastructure", Status: listing.StatusAvailable})

		service := claim.NewService(repo, auth.NewCapabilityChecker("security"), nil, quietLogger)
		h := claim.NewHandler(transport.NewBaseHandler(quietLogger), service)

		router = chi.NewRouter()
		router.Get("/claims", h.List)
		router.Post("/claims", h.Create)
		router.Get("/claims/{id}", h.Get)
		router.Patch("/claims/{id}/owner-approve", h.ApproveOwner)
		router.Patch("/claims/{id}/security-approve", h.ApproveSecurity)
		router.Patch("/claims/{id}/deny", h.Deny)
		router.Patch("/claims/{id}/cancel", h.Cancel)
		router.Patch("/claims/{id}/ship", h.Ship)
	})

	fileClaim := func() int64 {
		rec := as(qa, http.MethodPost, "/claims", `{"listingId":10,"justification":"test rig"}`)
		ExpectWithOffset(1, rec.Code).To(Equal(http.StatusCreated))
		var c claim.Claim
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &c)).To(Succeed())
		return c.ID
	}

	It("walks a claim through the full workflow", func() {
		id := fileClaim()

		Expect(as(owner, http.MethodPatch, "/claims/"+itoa(id)+"/owner-approve", "").Code).To(Equal(http.StatusOK))
		rec := as(security, http.MethodPatch, "/claims/"+itoa(id)+"/security-approve", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"approved"`))

		rec = as(owner, http.MethodPatch, "/claims/"+itoa(id)+"/ship", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"listingStatus":"shipped"`))
	})

	It("maps workflow errors to status codes", func() {
		id := fileClaim()

		rec := as(qa, http.MethodPost, "/claims", `{"listingId":10,"justification":"again"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("LISTING_UNAVAILABLE"))

		rec = as(dev, http.MethodPatch, "/claims/"+itoa(id)+"/owner-approve", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec = as(owner, http.MethodPatch, "/claims/"+itoa(id)+"/security-approve", "")
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_CLAIM_TRANSITION"))

		Expect(as(owner, http.MethodGet, "/claims/999", "").Code).To(Equal(http.StatusNotFound))
		Expect(as(nil, http.MethodPost, "/claims", `{"listingId":10}`).Code).To(Equal(http.StatusUnauthorized))
	})

	It("denies with a reason from the body", func() {
		id := fileClaim()

		rec := as(owner, http.MethodPatch, "/claims/"+itoa(id)+"/deny", `{}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("MISSING_FIELDS"))

		rec = as(owner, http.MethodPatch, "/claims/"+itoa(id)+"/deny", `{"reason":"Reserved"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"denialReason":"Reserved"`))
		Expect(repo.listingStatus(10)).To(Equal(listing.StatusAvailable))
	})

	It("lists the caller's own claims with mine=true", func() {
		fileClaim()

		var got []claim.Claim
		rec := as(qa, http.MethodGet, "/claims?mine=true", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got).To(HaveLen(1))

		rec = as(dev, http.MethodGet, "/claims?mine=true", "")
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got).To(BeEmpty())

		Expect(as(qa, http.MethodGet, "/claims?status=lost", "").Code).To(Equal(http.StatusBadRequest))
	})
})
