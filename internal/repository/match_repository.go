package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const matchColumns = `id, lost_id, found_id, score, auto_suggested, created_at`

// MatchRepository хранит предложенные совпадения. Записи только добавляются.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ExistingFoundIDs возвращает найденные вещи, для которых пара с lostID уже сохранена.
func (r *MatchRepository) ExistingFoundIDs(ctx context.Context, lostID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, `SELECT found_id FROM matches WHERE lost_id = $1`, lostID); err != nil {
		return nil, fmt.Errorf("match repository: existing: %w", err)
	}
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// InsertBatch сохраняет пары одной транзакцией. Уже существующие пары пропускаются
// уникальным индексом, возвращаются только реально вставленные строки.
func (r *MatchRepository) InsertBatch(ctx context.Context, lostID uuid.UUID, suggestions []models.MatchSuggestion) ([]models.Match, error) {
	if len(suggestions) == 0 {
		return []models.Match{}, nil
	}

	rows := make([][]interface{}, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, []interface{}{lostID, s.FoundID, s.Score, true})
	}

	var inserted []models.Match
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		inserted, err = common.InsertReturning[models.Match](ctx, tx,
			`INSERT INTO matches (lost_id, found_id, score, auto_suggested)`,
			`ON CONFLICT (lost_id, found_id) DO NOTHING RETURNING `+matchColumns,
			rows,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("match repository: insert: %w", err)
	}
	if inserted == nil {
		inserted = []models.Match{}
	}
	return inserted, nil
}

// ListByLostID возвращает все совпадения по убыванию оценки.
func (r *MatchRepository) ListByLostID(ctx context.Context, lostID uuid.UUID) ([]models.Match, error) {
	matches := make([]models.Match, 0)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE lost_id = $1 ORDER BY score DESC, created_at`
	if err := r.db.SelectContext(ctx, &matches, query, lostID); err != nil {
		return nil, fmt.Errorf("match repository: list: %w", err)
	}
	return matches, nil
}
