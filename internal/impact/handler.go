package impact

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hardware-marketplace/internal/transport"
)

type ServiceAPI interface {
	Leaderboard(ctx context.Context) ([]DepartmentStat, error)
	Totals(ctx context.Context) (Impact, error)
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

// GetLeaderboard handles GET /leaderboard
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Leaderboard(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// GetTotals handles GET /impact
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Service.Totals(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, totals)
}
