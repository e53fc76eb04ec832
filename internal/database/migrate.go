package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement is idempotent so it
// is safe to run on each start.
func Migrate(ctx context.Context, dbURL string) error {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("cannot open database for migration, %w", err)
	}
	defer db.Close()

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot reach database for migration, %w", err)
	}
	if _, err = db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("cannot apply schema, %w", err)
	}
	log.Info("database schema is up to date")
	return nil
}
