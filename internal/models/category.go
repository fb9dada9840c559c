// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups projects in the archive. Categories form a single flat,
// admin-ordered list; SortOrder is the rank written by bulk reorder.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryStat is a category together with the number of projects filed
// under it. Used by the admin listing summary.
type CategoryStat struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SortOrder    int    `json:"sortOrder"`
	ProjectCount int    `json:"count"`
}
