package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/campus-lostfound/internal/domain/valueobject"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const (
	foundItemColumns = `id, title, description, category, location_id, reporter_id, found_at, status, created_at`
	photoColumns     = `id, item_id, url, phash, created_at`

	defaultFoundListLimit = 100
	maxFoundListLimit     = 500
)

// FoundItemRepository работает с таблицами items_found и item_photos.
type FoundItemRepository struct {
	db *sqlx.DB
}

// NewFoundItemRepository создаёт экземпляр репозитория.
func NewFoundItemRepository(db *sqlx.DB) *FoundItemRepository {
	return &FoundItemRepository{db: db}
}

// CreateWithPhotos сохраняет вещь и все её фотографии в одной транзакции.
func (r *FoundItemRepository) CreateWithPhotos(ctx context.Context, item *models.FoundItem, photos []models.ItemPhoto) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO items_found (title, description, category, location_id, reporter_id, found_at, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			item.Title, item.Description, item.Category, item.LocationID, item.ReporterID, item.FoundAt, item.Status,
		).Scan(&item.ID, &item.CreatedAt); err != nil {
			if common.IsForeignKeyViolation(err) {
				return apperror.ErrLocationNotFound
			}
			return fmt.Errorf("found item repository: create: %w", err)
		}

		item.Photos = make([]models.ItemPhoto, 0, len(photos))
		if len(photos) == 0 {
			return nil
		}

		rows := make([][]interface{}, 0, len(photos))
		for _, p := range photos {
			rows = append(rows, []interface{}{item.ID, p.URL, p.PHash})
		}
		inserted, err := common.InsertReturning[models.ItemPhoto](ctx, tx,
			`INSERT INTO item_photos (item_id, url, phash)`,
			`RETURNING `+photoColumns,
			rows,
		)
		if err != nil {
			return fmt.Errorf("found item repository: create photos: %w", err)
		}
		item.Photos = inserted
		return nil
	})
}

// GetByID возвращает вещь вместе с фотографиями и местом находки.
func (r *FoundItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error) {
	item, err := common.GetByID[models.FoundItem](ctx, r.db, "items_found", foundItemColumns, id, apperror.ErrFoundItemNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("found item repository: %w", err)
	}

	items := []models.FoundItem{*item}
	if err := r.attachDetails(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetByIDs возвращает вещи по списку идентификаторов, индексированные по id.
func (r *FoundItemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.FoundItem, error) {
	result := make(map[uuid.UUID]models.FoundItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var items []models.FoundItem
	query := `SELECT ` + foundItemColumns + ` FROM items_found WHERE id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &items, query, uuidArray(ids)); err != nil {
		return nil, fmt.Errorf("found item repository: get by ids: %w", err)
	}
	if err := r.attachDetails(ctx, items); err != nil {
		return nil, err
	}
	for _, it := range items {
		result[it.ID] = it
	}
	return result, nil
}

// List возвращает вещи по фильтру, новые первыми.
func (r *FoundItemRepository) List(ctx context.Context, filter models.FoundItemFilter) ([]models.FoundItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.LocationID > 0 {
		args = append(args, filter.LocationID)
		conds = append(conds, fmt.Sprintf("location_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFoundListLimit
	}
	if limit > maxFoundListLimit {
		limit = maxFoundListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + foundItemColumns + ` FROM items_found`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	items := make([]models.FoundItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("found item repository: list: %w", err)
	}
	if err := r.attachDetails(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListCandidates возвращает доступные вещи, найденные не раньше since, в порядке добавления.
func (r *FoundItemRepository) ListCandidates(ctx context.Context, since time.Time) ([]models.FoundItem, error) {
	items := make([]models.FoundItem, 0)
	query := `
		SELECT ` + foundItemColumns + `
		FROM items_found
		WHERE status = $1 AND found_at >= $2
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &items, query, models.ItemStatusAvailable, since); err != nil {
		return nil, fmt.Errorf("found item repository: list candidates: %w", err)
	}
	return items, nil
}

// UpdateStatus переводит вещь в новый статус через таблицу допустимых переходов.
// Вещь на удержании под активной заявкой меняется только через проверку и выдачу заявки.
func (r *FoundItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next valueobject.ItemStatus) (*models.FoundItem, error) {
	var item *models.FoundItem
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		item, err = lockFoundItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.Status == models.ItemStatusOnHold {
			active, err := activeClaimExists(ctx, tx, id, uuid.Nil)
			if err != nil {
				return err
			}
			if active {
				return apperror.ErrItemHeldByClaim
			}
		}
		return setFoundItemStatus(ctx, tx, item, next)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// transitionFoundItem блокирует строку вещи и меняет статус, если переход допустим.
// Используется и заявками, чтобы проверка и запись шли под одной блокировкой.
func transitionFoundItem(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, next valueobject.ItemStatus) (*models.FoundItem, error) {
	item, err := lockFoundItem(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := setFoundItemStatus(ctx, tx, item, next); err != nil {
		return nil, err
	}
	return item, nil
}

func lockFoundItem(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.FoundItem, error) {
	return common.GetForUpdate[models.FoundItem](ctx, tx, "items_found", foundItemColumns, id, apperror.ErrFoundItemNotFound)
}

func setFoundItemStatus(ctx context.Context, tx *sqlx.Tx, item *models.FoundItem, next valueobject.ItemStatus) error {
	status, err := valueobject.ItemStatus(item.Status).Transition(next)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE items_found SET status = $2 WHERE id = $1`, item.ID, string(status)); err != nil {
		return fmt.Errorf("found item repository: update status: %w", err)
	}
	item.Status = string(status)
	return nil
}

func (r *FoundItemRepository) attachDetails(ctx context.Context, items []models.FoundItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	locIDs := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		locIDs = append(locIDs, int64(it.LocationID))
	}

	var photos []models.ItemPhoto
	query := `SELECT ` + photoColumns + ` FROM item_photos WHERE item_id = ANY($1::uuid[]) ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &photos, query, uuidArray(ids)); err != nil {
		return fmt.Errorf("found item repository: load photos: %w", err)
	}
	byItem := make(map[uuid.UUID][]models.ItemPhoto, len(items))
	for _, p := range photos {
		byItem[p.ItemID] = append(byItem[p.ItemID], p)
	}

	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations,
		`SELECT `+locationColumns+` FROM locations WHERE id = ANY($1)`, pq.Int64Array(locIDs)); err != nil {
		return fmt.Errorf("found item repository: load locations: %w", err)
	}
	byLoc := make(map[int]models.Location, len(locations))
	for _, l := range locations {
		byLoc[l.ID] = l
	}

	for i := range items {
		items[i].Photos = byItem[items[i].ID]
		if items[i].Photos == nil {
			items[i].Photos = []models.ItemPhoto{}
		}
		if loc, ok := byLoc[items[i].LocationID]; ok {
			items[i].Location = &loc
		}
	}
	return nil
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
