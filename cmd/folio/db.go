package main

import (
	"database/sql"
	"fmt"

	"folio/internal/config"
	"folio/internal/database"
)

// openDB loads configuration and connects to PostgreSQL. The caller closes
// the returned pool.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg.DSN(), cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
