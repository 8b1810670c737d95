package impact

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hardware-marketplace/internal"
)

// StatsReader returns every listing as a scoring item in creation order.
type StatsReader interface {
	Items(ctx context.Context) ([]Item, error)
}

type Service struct {
	reader StatsReader
	logger *slog.Logger
}

func NewService(reader StatsReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reader: reader, logger: logger}
}

func (s *Service) Leaderboard(ctx context.Context) ([]DepartmentStat, error) {
	items, err := s.reader.Items(ctx)
	if err != nil {
		s.logger.Error("failed to read listing stats", "error", err)
		return nil, internal.NewInternalError("failed to fetch leaderboard", err)
	}
	return RankDepartments(items), nil
}

// Totals is the impact of every listing ever posted.
func (s *Service) Totals(ctx context.Context) (Impact, error) {
	items, err := s.reader.Items(ctx)
	if err != nil {
		s.logger.Error("failed to read listing stats", "error", err)
		return Impact{}, internal.NewInternalError("failed to fetch impact totals", err)
	}
	return Score(items), nil
}
