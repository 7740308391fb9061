package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
)

// NewPostgres создаёт подключение к PostgreSQL с заданным DSN.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	// Нагрузка небольшая (кампусный сервис), пул держим скромным.
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

// RunMigrations применяет goose-миграции из каталога до последней версии.
// Применённые версии goose хранит в goose_db_version.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsDir string) error {
	goose.SetLogger(logger.WithComponent("db"))
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres: goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn.DB, migrationsDir); err != nil {
		return fmt.Errorf("postgres: миграции не применены: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, conn.DB)
	if err != nil {
		return fmt.Errorf("postgres: версия схемы: %w", err)
	}
	logger.WithComponent("db").WithField("version", version).Info("схема актуальна")
	return nil
}
