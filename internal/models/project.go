// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Project is a portfolio entry. Description holds editor-produced HTML that
// is stored and returned as-is. Thumbnail is either a URL or an inline
// data URL.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   *string   `json:"thumbnail"`
	CategoryID  *int64    `json:"categoryId"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Populated by joins; not a column of projects.
	CategoryName *string `json:"categoryName"`
}

// Uncategorized reports whether the project has no category.
func (p *Project) Uncategorized() bool {
	return p.CategoryID == nil
}

// CategoryLabel returns the category name for display, or fallback when the
// project is uncategorized.
func (p *Project) CategoryLabel(fallback string) string {
	if p.CategoryName == nil || *p.CategoryName == "" {
		return fallback
	}
	return *p.CategoryName
}
