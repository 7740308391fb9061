package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
)

// StatsRepository считает показатели панели одним запросом.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get возвращает счётчики по вещам и заявкам.
// match_accuracy доля сохранённых совпадений, чья найденная вещь ушла по подтверждённой заявке.
func (r *StatsRepository) Get(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	query := `
		SELECT
			(SELECT COUNT(*) FROM items_found) AS total_items,
			(SELECT COUNT(*) FROM items_found WHERE status = 'available') AS available_items,
			(SELECT COUNT(*) FROM items_found WHERE status = 'on_hold') AS on_hold_items,
			(SELECT COUNT(*) FROM items_found WHERE status = 'claimed') AS claimed_items,
			(SELECT COUNT(*) FROM claims WHERE status = 'requested') AS pending_claims,
			(SELECT COUNT(*) FROM claims WHERE status = 'picked_up') AS items_reunited,
			COALESCE((
				SELECT AVG(CASE WHEN EXISTS (
					SELECT 1 FROM claims c
					WHERE c.found_id = m.found_id AND c.status IN ('verified', 'picked_up')
				) THEN 1.0 ELSE 0.0 END)
				FROM matches m
			), 0) AS match_accuracy
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("stats repository: get: %w", err)
	}
	return &stats, nil
}
