package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const locationColumns = `id, name, building, floor`

// LocationRepository работает со справочником мест кампуса.
type LocationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List возвращает все места, отсортированные по идентификатору.
func (r *LocationRepository) List(ctx context.Context) ([]models.Location, error) {
	locations := make([]models.Location, 0)
	if err := r.db.SelectContext(ctx, &locations, `SELECT `+locationColumns+` FROM locations ORDER BY id`); err != nil {
		return nil, fmt.Errorf("location repository: list: %w", err)
	}
	return locations, nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id int) (*models.Location, error) {
	loc, err := common.GetByID[models.Location](ctx, r.db, "locations", locationColumns, id, apperror.ErrLocationNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("location repository: %w", err)
	}
	return loc, nil
}

func (r *LocationRepository) Create(ctx context.Context, loc *models.Location) error {
	query := `INSERT INTO locations (name, building, floor) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, loc.Name, loc.Building, loc.Floor).Scan(&loc.ID); err != nil {
		return fmt.Errorf("location repository: create: %w", err)
	}
	return nil
}

// Count нужен для идемпотентного заполнения демо-данными.
func (r *LocationRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM locations`); err != nil {
		return 0, fmt.Errorf("location repository: count: %w", err)
	}
	return n, nil
}
