package category

import (
	"log/slog"

	"github.com/frahmantamala/hardware-marketplace/internal"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

func (s *Service) GetAllCategories() []CategoryResponse {
	categories := All()
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, c.ToResponse())
	}
	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses
}

func (s *Service) GetCategoryByName(name string) (*CategoryResponse, error) {
	for _, c := range All() {
		if c.Name == name {
			resp := c.ToResponse()
			return &resp, nil
		}
	}
	return nil, internal.NewValidationFieldError("category", "unknown category "+name, internal.ErrCodeInvalidCategory)
}
