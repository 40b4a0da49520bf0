package models

import (
	"time"
)

// CommentStatus is the moderation state of a comment
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Comment represents a comment on an article
type Comment struct {
	ID        string        `json:"id" db:"id"`
	ArticleID string        `json:"article_id" db:"article_id"`
	UserID    string        `json:"user_id" db:"user_id"`
	UserName  string        `json:"user_name" db:"user_name"`
	Content   string        `json:"content" db:"content"`
	Status    CommentStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// MaxCommentLength is the maximum allowed characters in a comment body
const MaxCommentLength = 5000
