package category

import (
	"net/http"

	"github.com/frahmantamala/hardware-marketplace/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories() []CategoryResponse
	GetCategoryByName(name string) (*CategoryResponse, error)
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

// GetCategories handles GET /categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.Service.GetAllCategories(),
	})
}
