package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const lostItemColumns = `id, reporter_id, title, description, last_seen_location_id, last_seen_at, photo_url, created_at`

// LostItemRepository работает с таблицей items_lost. Записи после создания не меняются.
type LostItemRepository struct {
	db *sqlx.DB
}

func NewLostItemRepository(db *sqlx.DB) *LostItemRepository {
	return &LostItemRepository{db: db}
}

func (r *LostItemRepository) Create(ctx context.Context, item *models.LostItem) error {
	query := `
		INSERT INTO items_lost (reporter_id, title, description, last_seen_location_id, last_seen_at, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		item.ReporterID, item.Title, item.Description, item.LastSeenLocationID, item.LastSeenAt, item.PhotoURL,
	).Scan(&item.ID, &item.CreatedAt); err != nil {
		if common.IsForeignKeyViolation(err) {
			return apperror.ErrLocationNotFound
		}
		return fmt.Errorf("lost item repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает заявление о потере вместе с местом, где вещь видели последний раз.
func (r *LostItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LostItem, error) {
	item, err := common.GetByID[models.LostItem](ctx, r.db, "items_lost", lostItemColumns, id, apperror.ErrLostItemNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("lost item repository: %w", err)
	}

	loc, err := common.GetByID[models.Location](ctx, r.db, "locations", locationColumns, item.LastSeenLocationID, apperror.ErrLocationNotFound)
	if err == nil {
		item.LastSeenLocation = loc
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("lost item repository: load location: %w", err)
	}
	return item, nil
}
