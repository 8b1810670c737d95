package claim

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
)

type ServiceAPI interface {
	FileClaim(ctx context.Context, dto FileClaimDTO, actor *auth.User) (*Claim, error)
	ApproveAsOwner(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error)
	ApproveAsSecurity(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error)
	Deny(ctx context.Context, claimID int64, dto DenyClaimDTO, actor *auth.User) (*Claim, error)
	Cancel(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error)
	MarkShipped(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error)
	GetClaim(ctx context.Context, id int64) (*Claim, error)
	ListClaims(ctx context.Context, f Filter) ([]*Claim, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// List handles GET /claims
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if u, ok := auth.UserFromContext(r.Context()); ok {
		userID = u.ID
	}
	filter, err := FilterFromQuery(r.URL.Query().Get, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	claims, err := h.Service.ListClaims(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, claims)
}

// Get handles GET /claims/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.GetClaim(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Create handles POST /claims
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingAuthorization)
		return
	}

	var dto FileClaimDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.FileClaim(r.Context(), dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// ApproveOwner handles PATCH /claims/{id}/owner-approve
func (h *Handler) ApproveOwner(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.ApproveAsOwner)
}

// ApproveSecurity handles PATCH /claims/{id}/security-approve
func (h *Handler) ApproveSecurity(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.ApproveAsSecurity)
}

// Cancel handles PATCH /claims/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Cancel)
}

// Ship handles PATCH /claims/{id}/ship
func (h *Handler) Ship(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.MarkShipped)
}

// Deny handles PATCH /claims/{id}/deny
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	var dto DenyClaimDTO
	h.decide(w, r, func(ctx context.Context, id int64, actor *auth.User) (*Claim, error) {
		if err := h.DecodeJSON(w, r, &dto); err != nil {
			return nil, err
		}
		return h.Service.Deny(ctx, id, dto, actor)
	})
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action func(context.Context, int64, *auth.User) (*Claim, error)) {
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

	c, err := action(r.Context(), id, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}
