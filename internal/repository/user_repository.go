package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/repository/common"
)

const userColumns = `id, campus_id, email, name, role, password_hash, created_at`

// UserRepository отвечает за таблицу users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя. Занятый email возвращает ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (campus_id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.CampusID, user.Email, user.Name, user.Role, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return apperror.ErrEmailTaken
		}
		return fmt.Errorf("user repository: create: %w", err)
	}

	return nil
}

// FindOrCreate возвращает пользователя с данным email, создавая его при первом обращении.
// Повторные вызовы с тем же email возвращают ту же запись; имя и роль существующего
// пользователя не меняются.
func (r *UserRepository) FindOrCreate(ctx context.Context, email, name, role string) (*models.User, error) {
	return findOrCreateUser(ctx, r.db, email, name, role)
}

func findOrCreateUser(ctx context.Context, q sqlx.QueryerContext, email, name, role string) (*models.User, error) {
	var user models.User
	query := `
		INSERT INTO users (email, name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns

	if err := sqlx.GetContext(ctx, q, &user, query, email, name, role); err != nil {
		return nil, fmt.Errorf("user repository: find or create: %w", err)
	}

	return &user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email: %w", err)
	}

	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := common.GetByID[models.User](ctx, r.db, "users", userColumns, id, apperror.ErrUserNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("user repository: %w", err)
	}
	return user, nil
}

// SetPasswordHash сохраняет хеш пароля.
func (r *UserRepository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("user repository: set password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

// UpdateRole меняет роль пользователя.
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	var user models.User
	query := `UPDATE users SET role = $2 WHERE id = $1 RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, &user, query, id, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: update role: %w", err)
	}
	return &user, nil
}
