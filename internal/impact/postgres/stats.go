package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	"github.com/jmoiron/sqlx"
)

const itemsQuery = `SELECT department, category, status FROM listings ORDER BY created_at ASC, id ASC`

// StatsReader reads scoring items straight from the listings table.
type StatsReader struct {
	db *sqlx.DB
}

func NewStatsReader(db *sqlx.DB) *StatsReader {
	return &StatsReader{db: db}
}

func (r *StatsReader) Items(ctx context.Context) ([]impact.Item, error) {
	items := []impact.Item{}
	if err := r.db.SelectContext(ctx, &items, itemsQuery); err != nil {
		return nil, fmt.Errorf("failed to select listing stats: %w", err)
	}
	return items, nil
}
