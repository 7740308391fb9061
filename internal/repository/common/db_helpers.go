package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// GetByID - универсальная функция для получения сущности по ID
func GetByID[T any](ctx context.Context, db sqlx.QueryerContext, table, columns string, id interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", columns, table)

	if err := sqlx.GetContext(ctx, db, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by id from %s: %w", table, err)
	}

	return &entity, nil
}

// GetForUpdate читает строку внутри транзакции с блокировкой FOR UPDATE.
func GetForUpdate[T any](ctx context.Context, tx *sqlx.Tx, table, columns string, id interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 FOR UPDATE", columns, table)

	if err := tx.GetContext(ctx, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("lock %s: %w", table, err)
	}

	return &entity, nil
}

// InsertReturning - массовая вставка одним запросом с RETURNING.
// baseQuery: "INSERT INTO t (a, b)", suffix: "ON CONFLICT ... RETURNING ...".
// Возвращает только строки, которые вернула база.
func InsertReturning[T any](ctx context.Context, tx *sqlx.Tx, baseQuery, suffix string, rows [][]interface{}) ([]T, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	fieldsCount := len(rows[0])
	values := make([]interface{}, 0, len(rows)*fieldsCount)

	// Генерируем placeholders: ($1, $2, $3), ($4, $5, $6), ...
	var b strings.Builder
	for i, row := range rows {
		if len(row) != fieldsCount {
			return nil, fmt.Errorf("expected %d fields, got %d", fieldsCount, len(row))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*fieldsCount+j+1)
		}
		b.WriteString(")")
		values = append(values, row...)
	}

	query := baseQuery + " VALUES " + b.String()
	if suffix != "" {
		query += " " + suffix
	}

	var out []T
	if err := tx.SelectContext(ctx, &out, query, values...); err != nil {
		return nil, fmt.Errorf("batch insert: %w", err)
	}

	return out, nil
}

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
