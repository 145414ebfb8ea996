// Package migrations embeds the goose SQL migrations for the postgres store.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// gooseUpContext and gooseResetContext are seams for tests.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.ResetContext(ctx, db, dir, opts...)
	}
)

func setup() error {
	goose.SetBaseFS(Migrations)
	return goose.SetDialect("pgx")
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Reset rolls every migration back and applies them again, leaving an empty schema.
func Reset(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := gooseResetContext(ctx, db, "."); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Status prints the applied/pending state of each migration to the goose logger.
func Status(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}
