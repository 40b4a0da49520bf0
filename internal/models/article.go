package models

import (
	"time"
)

// ArticleStatus is the lifecycle state of an article
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

// Article represents an article in the system
type Article struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Content     string        `json:"content" db:"content"`
	AuthorID    string        `json:"author_id" db:"author_id"`
	AuthorName  string        `json:"author_name" db:"author_name"`
	Category    string        `json:"category,omitempty" db:"category"`
	Tags        []string      `json:"tags" db:"-"` // Stored as JSONB in DB
	Status      ArticleStatus `json:"status" db:"status"`
	Featured    bool          `json:"featured" db:"featured"`
	LikesCount  int           `json:"likes_count" db:"likes_count"`
	ViewsCount  int           `json:"views_count" db:"views_count"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty" db:"published_at"`
}

// IsPublished reports whether the article is publicly visible
func (a *Article) IsPublished() bool {
	return a.Status == ArticlePublished
}

// ArticleInput carries the fields accepted when creating an article
type ArticleInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ArticlePatch carries the fields accepted when editing an article.
// Nil fields are left untouched.
type ArticlePatch struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Featured *bool     `json:"featured"`
}

// ArticleOrder selects the ordering of an article listing
type ArticleOrder int

const (
	// OrderNewest sorts by created_at descending
	OrderNewest ArticleOrder = iota
	// OrderTrending sorts by likes_count descending, then created_at descending
	OrderTrending
)

// ArticleFilter narrows an article listing. Empty fields do not filter.
type ArticleFilter struct {
	Status   ArticleStatus
	AuthorID string
	Category string
	Tag      string
	Featured *bool
	Order    ArticleOrder
	Limit    int
}

// Like is the (article, user) fact of a user liking an article
type Like struct {
	ArticleID string    `json:"article_id" db:"article_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LikeResult is returned by a like toggle
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
