// Package thread turns a flat list of project comments into the two-level
// tree shown under a project: root comments, each with its direct replies.
package thread

import (
	"cmp"
	"slices"

	"folio/internal/models"
)

// Node is a comment with its replies. Replies of a reply are never attached.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// Build groups comments into root nodes with their replies. It keeps the
// input order for roots and for the replies under each root; callers pass
// comments already in thread order (see Sort).
//
// A reply is attached only when its parent is a root present in the input.
// Orphans, whose parent was deleted, and replies to replies are dropped.
func Build(comments []models.Comment) []*Node {
	roots := make([]*Node, 0, len(comments))
	byID := make(map[int64]*Node, len(comments))

	for _, c := range comments {
		if c.ParentID == nil {
			n := &Node{Comment: c, Replies: []*Node{}}
			byID[c.ID] = n
			roots = append(roots, n)
		}
	}

	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, &Node{Comment: c, Replies: []*Node{}})
		}
	}

	return roots
}

// Count returns the number of comments visible in the tree, roots and
// replies together.
func Count(roots []*Node) int {
	n := len(roots)
	for _, r := range roots {
		n += len(r.Replies)
	}
	return n
}

// Sort orders comments in place the way threads are displayed: newest
// thread first, then the root, then its replies oldest first.
func Sort(comments []models.Comment) {
	slices.SortStableFunc(comments, func(a, b models.Comment) int {
		if c := cmp.Compare(b.GroupKey(), a.GroupKey()); c != 0 {
			return c
		}
		if a.IsReply() != b.IsReply() {
			if a.IsReply() {
				return 1
			}
			return -1
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
