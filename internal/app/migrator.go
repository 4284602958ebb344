package app

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	// Go-миграции регистрируются в init()
	_ "github.com/Freeeeeet/tutor_scheduler/migrations"
)

// migrationsDir корень пустой ФС goose: миграции берутся из регистрации в init()
const migrationsDir = "."

// Migrator обёртка над goose
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMigrator создаёт мигратор поверх пула. Goose работает с *sql.DB, поэтому
// оборачиваем пул через stdlib
func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	useCompiledMigrations()

	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		logger: logger,
	}, nil
}

// useCompiledMigrations отключает goose от файловой системы: бинарнику не нужен каталог migrations
func useCompiledMigrations() {
	goose.SetBaseFS(embed.FS{})
}

// Run применяет все pending миграции и пишет в лог итоговую версию схемы
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations")

	if err := goose.UpContext(ctx, mg.db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("Migrations applied", zap.Int64("version", version))
	return nil
}

// Version показывает текущую версию миграций
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает *sql.DB мигратора. Пул закрывается в main
func (mg *Migrator) Close() error {
	return mg.db.Close()
}
