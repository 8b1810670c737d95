package hardware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Catalog Catalog
	Timeout time.Duration
}

func NewHandler(baseHandler *transport.BaseHandler, catalog Catalog, timeout time.Duration) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Catalog:     catalog,
		Timeout:     timeout,
	}
}

// Lookup handles GET /hardware?serial=... so the listing form can pre-fill
// specs and show the compliance verdict before submitting.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	serial := NormalizeSerial(r.URL.Query().Get("serial"))
	if serial == "" {
		h.HandleServiceError(w, internal.NewValidationFieldError("serial", "Serial number is required", internal.ErrCodeMissingFields))
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	record, err := h.Catalog.Lookup(ctx, serial)
	if err != nil {
		h.HandleServiceError(w, MapLookupError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, LookupResponse{
		Record:          *record,
		HasStorageMedia: record.HasStorageMedia(),
		Found:           true,
		Compliance:      CanList(record.Specs),
	})
}

// MapLookupError converts catalog errors into AppErrors.
func MapLookupError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return internal.ErrNotFoundInCatalog
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrUnavailable):
		return internal.ErrCatalogUnavailable.WithCause(err)
	default:
		return internal.NewInternalError("hardware lookup failed", err)
	}
}
