package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	maxCategoryNameLen = 100
	maxTitleLen        = 300
	maxDescriptionLen  = 1_000_000
	maxAuthorLen       = 50
	maxCommentLen      = 2_000
	maxSecretLen       = 72 // bcrypt input limit
)

// validateCategoryName checks a category name and returns the first error found.
func validateCategoryName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 100 characters)."
	}
	return ""
}

// validateProject checks project form inputs and returns the first error found.
func validateProject(title, categoryName, description string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(categoryName) == "" {
		return "Category is required."
	}
	if len(description) > maxDescriptionLen {
		return "Content is too long."
	}
	return ""
}

// validateComment checks a comment; visitors must also supply author and secret.
func validateComment(author, password, content string, admin bool) string {
	if strings.TrimSpace(content) == "" {
		return "Comment content is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 2,000 characters)."
	}
	if admin {
		return ""
	}
	if strings.TrimSpace(author) == "" {
		return "Author is required."
	}
	if utf8.RuneCountInString(author) > maxAuthorLen {
		return "Author is too long (max 50 characters)."
	}
	if password == "" {
		return "Password is required."
	}
	if len(password) > maxSecretLen {
		return "Password is too long (max 72 bytes)."
	}
	return ""
}
