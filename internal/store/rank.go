// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"folio/internal/database"
)

// rankedTables lists the tables that carry an admin-controlled sort_order.
// The name is interpolated into SQL, so only these values are accepted.
var rankedTables = map[string]bool{
	"categories": true,
	"projects":   true,
}

// reorder assigns sort_order = i to ids[i] for every submitted id in one
// transaction. Any failure, including an id that matches no row, rolls the
// whole batch back. Rows not listed keep their current rank.
func reorder(ctx context.Context, db *sql.DB, table string, ids []int64) error {
	if !rankedTables[table] {
		return fmt.Errorf("reorder: table %q has no rank", table)
	}
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder %s: id %d: %w", table, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}

	return database.WithTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE `+table+` SET sort_order = $1 WHERE id = $2`)
		if err != nil {
			return fmt.Errorf("prepare reorder %s: %w", table, err)
		}
		defer stmt.Close()

		for i, id := range ids {
			res, err := stmt.ExecContext(ctx, i, id)
			if err != nil {
				return fmt.Errorf("reorder %s %d: %w", table, id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("reorder %s %d: %w", table, id, err)
			}
			if n == 0 {
				return fmt.Errorf("reorder %s %d: %w", table, id, ErrNotFound)
			}
		}

		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&total); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		if total != len(ids) {
			slog.Warn("partial reorder leaves stale ranks",
				"table", table, "submitted", len(ids), "total", total)
		}
		return nil
	})
}
