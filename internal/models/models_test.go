// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func ptr[T any](v T) *T { return &v }

// TestProjectCategoryLabel verifies the display label falls back for
// uncategorized projects and for empty joined names.
func TestProjectCategoryLabel(t *testing.T) {
	tests := []struct {
		name string
		p    Project
		want string
	}{
		{name: "named", p: Project{CategoryID: ptr(int64(1)), CategoryName: ptr("Web")}, want: "Web"},
		{name: "uncategorized", p: Project{}, want: "Uncategorized"},
		{name: "empty name", p: Project{CategoryID: ptr(int64(1)), CategoryName: ptr("")}, want: "Uncategorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.CategoryLabel("Uncategorized"); got != tt.want {
				t.Errorf("CategoryLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProjectUncategorized(t *testing.T) {
	if !(&Project{}).Uncategorized() {
		t.Error("project without category should be uncategorized")
	}
	if (&Project{CategoryID: ptr(int64(3))}).Uncategorized() {
		t.Error("project with category should not be uncategorized")
	}
}

// TestCommentGroupKey verifies replies group under their parent and roots
// under themselves.
func TestCommentGroupKey(t *testing.T) {
	root := Comment{ID: 7}
	reply := Comment{ID: 9, ParentID: ptr(int64(7))}

	if root.IsReply() {
		t.Error("root reported as reply")
	}
	if !reply.IsReply() {
		t.Error("reply not reported as reply")
	}
	if root.GroupKey() != 7 || reply.GroupKey() != 7 {
		t.Errorf("GroupKey: root=%d reply=%d, want 7 and 7", root.GroupKey(), reply.GroupKey())
	}
}
