package store

import (
	"context"
	"database/sql"
	"fmt"
)

// VisitorStore appends to and summarizes the visitor log.
type VisitorStore struct {
	db *sql.DB
}

// NewVisitorStore returns a new VisitorStore.
func NewVisitorStore(db *sql.DB) *VisitorStore {
	return &VisitorStore{db: db}
}

// Record logs a visit from ip at the current time.
func (s *VisitorStore) Record(ctx context.Context, ip string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO visitor_logs (ip) VALUES ($1)`, ip); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// CountToday returns the number of distinct IPs seen since midnight in the
// database server's time zone.
func (s *VisitorStore) CountToday(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT ip) FROM visitor_logs
		WHERE visited_at >= date_trunc('day', NOW())
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count today's visitors: %w", err)
	}
	return n, nil
}
