package models

import "time"

// Comment is a visitor or admin remark on a project. Replies reference a
// root comment through ParentID; nesting is one level deep.
type Comment struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	Author    string    `json:"author"`
	Secret    string    `json:"-"`
	Content   string    `json:"content"`
	IsAdmin   bool      `json:"isAdmin"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// GroupKey is the id of the thread the comment belongs to: its parent for a
// reply, itself for a root.
func (c *Comment) GroupKey() int64 {
	if c.ParentID != nil {
		return *c.ParentID
	}
	return c.ID
}
