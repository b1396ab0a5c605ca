package main

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

func migrate(pool *pgxpool.Pool, logger *slog.Logger) (err error) {
	migrator, err := db.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); err == nil {
			err = closeErr
		}
	}()
	return migrator.Up()
}
