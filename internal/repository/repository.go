package repository

import (
	"context"
	"time"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// Lookups return (nil, nil) when the row does not exist.

// Store is the transactional collaborator shared by every repository
type Store interface {
	// WithinTx runs fn atomically. Repository calls made with the ctx handed
	// to fn are part of the same unit; when fn fails nothing is persisted.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	HealthCheck(ctx context.Context) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create fails with models.ErrConflict when the email is taken
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	LinkExternalID(ctx context.Context, id, externalID string) error
	UpdateRole(ctx context.Context, id string, role models.Role) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	// LockForUpdate reads the article and holds it until the surrounding
	// transaction ends
	LockForUpdate(ctx context.Context, id string) (*models.Article, error)
	// Update writes the editable fields: title, content, category, tags,
	// featured and updated_at
	Update(ctx context.Context, article *models.Article) error
	// MarkPublished moves a draft to published. It reports false when the
	// article was not a draft.
	MarkPublished(ctx context.Context, id string, at time.Time) (bool, error)
	// AdjustLikes adds delta to likes_count and returns the new value
	AdjustLikes(ctx context.Context, id string, delta int) (int, error)
	// IncrementViews adds one view to a published article and returns the
	// new count. It fails with models.ErrNotFound otherwise.
	IncrementViews(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Count(ctx context.Context) (int, error)
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Exists(ctx context.Context, articleID, userID string) (bool, error)
	// Insert fails with models.ErrConflict when the pair already exists
	Insert(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, articleID, userID string) (bool, error)
	DeleteByArticle(ctx context.Context, articleID string) (int, error)
	CountByArticle(ctx context.Context, articleID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// PendingScope narrows a pending comment listing. Empty fields do not filter.
type PendingScope struct {
	// ArticleAuthorID keeps comments on articles written by this user
	ArticleAuthorID string
	ArticleID       string
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// SetStatus moves a comment from one status to another. It reports false
	// when the comment was not in the from status.
	SetStatus(ctx context.Context, id string, from, to models.CommentStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByArticle(ctx context.Context, articleID string) (int, error)
	// ListByArticle returns comments oldest first
	ListByArticle(ctx context.Context, articleID string, status models.CommentStatus) ([]*models.Comment, error)
	// ListPending returns pending comments newest first
	ListPending(ctx context.Context, scope PendingScope) ([]*models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// SettingRepository defines the interface for site settings
type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Store   Store
	User    UserRepository
	Article ArticleRepository
	Like    LikeRepository
	Comment CommentRepository
	Setting SettingRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Store:   db,
		User:    NewUserRepo(db),
		Article: NewArticleRepo(db),
		Like:    NewLikeRepo(db),
		Comment: NewCommentRepo(db),
		Setting: NewSettingRepo(db),
	}
}

