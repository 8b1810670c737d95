package listing

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
)

type ServiceAPI interface {
	CreateListing(ctx context.Context, dto CreateListingDTO, actor *auth.User) (*Listing, error)
	ListListings(ctx context.Context, f Filter) ([]*Listing, error)
	GetListing(ctx context.Context, id int64) (*ListingDetail, error)
	UpdateListing(ctx context.Context, id int64, dto UpdateListingDTO, actor *auth.User) (*Listing, error)
	DeleteListing(ctx context.Context, id int64, actor *auth.User) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Timeout time.Duration
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, timeout time.Duration) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Timeout:     timeout,
	}
}

// List handles GET /listings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query().Get)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	listings, err := h.Service.ListListings(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listings)
}

// Create handles POST /listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingAuthorization)
		return
	}

	var dto CreateListingDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// the catalog lookup happens inside, so bound it
	ctx, cancel := internal.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	created, err := h.Service.CreateListing(ctx, dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// Get handles GET /listings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	detail, err := h.Service.GetListing(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

// Update handles PATCH /listings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingAuthorization)
		return
	}
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateListingDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateListing(r.Context(), id, dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /listings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingAuthorization)
		return
	}
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteListing(r.Context(), id, user); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
