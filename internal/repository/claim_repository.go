package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/domain/valueobject"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const (
	claimColumns = `id, found_id, claimant_id, status, hold_code, notes, requested_at, verified_at, verifier_id, picked_up_at`

	defaultClaimListLimit = 100
)

// ClaimRepository хранит заявки и синхронно меняет статус найденной вещи.
// Все изменения идут в одной транзакции с блокировкой строк FOR UPDATE.
type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// CreateWithHold переводит вещь available → on_hold и создаёт заявку requested.
// Заявитель ищется или создаётся в той же транзакции. Если вещь уже не доступна,
// возвращается InvalidTransition, и ни заявка, ни заявитель не сохраняются.
func (r *ClaimRepository) CreateWithHold(ctx context.Context, claim *models.Claim, claimant *models.User) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		item, err := transitionFoundItem(ctx, tx, claim.FoundID, valueobject.ItemStatusOnHold)
		if err != nil {
			return err
		}

		user, err := findOrCreateUser(ctx, tx, claimant.Email, claimant.Name, claimant.Role)
		if err != nil {
			return err
		}
		*claimant = *user
		claim.ClaimantID = user.ID

		query := `
			INSERT INTO claims (found_id, claimant_id, status, hold_code, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + claimColumns
		if err := tx.GetContext(ctx, claim, query,
			claim.FoundID, claim.ClaimantID, models.ClaimStatusRequested, claim.HoldCode, claim.Notes,
		); err != nil {
			return fmt.Errorf("claim repository: create: %w", err)
		}
		claim.FoundItem = item
		return nil
	})
}

// Verify фиксирует решение сотрудника. Отказ возвращает вещь в available,
// подтверждение статус вещи не трогает.
func (r *ClaimRepository) Verify(ctx context.Context, id uuid.UUID, decision models.ClaimDecision) (*models.Claim, error) {
	var updated models.Claim
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		claim, err := common.GetForUpdate[models.Claim](ctx, tx, "claims", claimColumns, id, apperror.ErrClaimNotFound)
		if err != nil {
			return err
		}

		next := valueobject.ClaimStatusVerified
		if !decision.Verified {
			next = valueobject.ClaimStatusRejected
		}
		status, err := valueobject.ClaimStatus(claim.Status).Transition(next)
		if err != nil {
			return err
		}

		if !decision.Verified {
			if err := releaseFoundItem(ctx, tx, claim.FoundID, claim.ID); err != nil {
				return err
			}
		}

		query := `
			UPDATE claims
			SET status = $2, verified_at = $3, verifier_id = $4, notes = COALESCE($5, notes)
			WHERE id = $1
			RETURNING ` + claimColumns
		if err := tx.GetContext(ctx, &updated, query,
			id, string(status), time.Now().UTC(), decision.VerifierID, decision.Notes,
		); err != nil {
			return fmt.Errorf("claim repository: verify: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Pickup выдаёт вещь по коду: заявка verified → picked_up, вещь on_hold → claimed.
func (r *ClaimRepository) Pickup(ctx context.Context, id uuid.UUID, holdCode string) (*models.Claim, error) {
	var updated models.Claim
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		claim, err := common.GetForUpdate[models.Claim](ctx, tx, "claims", claimColumns, id, apperror.ErrClaimNotFound)
		if err != nil {
			return err
		}

		status, err := valueobject.ClaimStatus(claim.Status).Transition(valueobject.ClaimStatusPickedUp)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(holdCode), claim.HoldCode) {
			return apperror.ErrHoldCodeMismatch
		}

		item, err := transitionFoundItem(ctx, tx, claim.FoundID, valueobject.ItemStatusClaimed)
		if err != nil {
			return err
		}

		query := `UPDATE claims SET status = $2, picked_up_at = $3 WHERE id = $1 RETURNING ` + claimColumns
		if err := tx.GetContext(ctx, &updated, query, id, string(status), time.Now().UTC()); err != nil {
			return fmt.Errorf("claim repository: pickup: %w", err)
		}
		updated.FoundItem = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	claim, err := common.GetByID[models.Claim](ctx, r.db, "claims", claimColumns, id, apperror.ErrClaimNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("claim repository: %w", err)
	}
	return claim, nil
}

// List возвращает заявки, новые первыми. Пустой status означает все заявки.
func (r *ClaimRepository) List(ctx context.Context, status string, offset, limit int) ([]models.Claim, error) {
	if limit <= 0 {
		limit = defaultClaimListLimit
	}
	if offset < 0 {
		offset = 0
	}

	claims := make([]models.Claim, 0)
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE ($1 = '' OR status = $1)
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &claims, query, status, limit, offset); err != nil {
		return nil, fmt.Errorf("claim repository: list: %w", err)
	}
	return claims, nil
}

// releaseFoundItem возвращает вещь в available после отказа по заявке claimID.
// Вещь, которую уже удерживает другая активная заявка, остаётся как есть.
func releaseFoundItem(ctx context.Context, tx *sqlx.Tx, foundID, claimID uuid.UUID) error {
	item, err := lockFoundItem(ctx, tx, foundID)
	if err != nil {
		return err
	}
	if item.Status != models.ItemStatusOnHold {
		return nil
	}
	held, err := activeClaimExists(ctx, tx, foundID, claimID)
	if err != nil {
		return err
	}
	if held {
		return nil
	}
	return setFoundItemStatus(ctx, tx, item, valueobject.ItemStatusAvailable)
}

// activeClaimExists есть ли у вещи заявка requested или verified, кроме except.
// Вызывается под блокировкой строки вещи: все выходы заявки из активных статусов,
// кроме подтверждения, тоже берут эту блокировку.
func activeClaimExists(ctx context.Context, tx *sqlx.Tx, foundID, except uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM claims
			WHERE found_id = $1 AND status IN ($2, $3) AND id <> $4
		)`
	if err := tx.GetContext(ctx, &exists, query,
		foundID, models.ClaimStatusRequested, models.ClaimStatusVerified, except,
	); err != nil {
		return false, fmt.Errorf("claim repository: active claims: %w", err)
	}
	return exists, nil
}
