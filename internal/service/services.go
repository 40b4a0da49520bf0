package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/auth"
	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
)

// IdentityResolver resolves a presented credential to an actor
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (models.Actor, error)
}

// UserService defines account and credential operations
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	LoginExternal(ctx context.Context, assertion string) (*models.AuthResponse, error)
	Me(ctx context.Context, actor models.Actor) (*models.User, error)
	List(ctx context.Context, actor models.Actor) ([]*models.User, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.User, error)
	ChangeRole(ctx context.Context, actor models.Actor, id string, role models.Role) (*models.User, error)
}

// ArticleService defines the article lifecycle operations
type ArticleService interface {
	Create(ctx context.Context, actor models.Actor, in *models.ArticleInput) (*models.Article, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Article, error)
	Update(ctx context.Context, actor models.Actor, id string, patch *models.ArticlePatch) (*models.Article, error)
	Publish(ctx context.Context, actor models.Actor, id string) (*models.Article, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	RecordView(ctx context.Context, id string) (int, error)
	ToggleLike(ctx context.Context, actor models.Actor, id string) (*models.LikeResult, error)
	ListByAuthor(ctx context.Context, actor models.Actor, authorID string, limit int) ([]*models.Article, error)
}

// CommentService defines the comment moderation operations
type CommentService interface {
	Create(ctx context.Context, actor models.Actor, articleID, content string) (*models.Comment, error)
	Approve(ctx context.Context, actor models.Actor, id string) (*models.Comment, error)
	Reject(ctx context.Context, actor models.Actor, id string) (*models.Comment, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	ListApproved(ctx context.Context, actor models.Actor, articleID string) ([]*models.Comment, error)
	ListPending(ctx context.Context, actor models.Actor, articleID string) ([]*models.Comment, error)
}

// SelectorService defines the read-only ranked article views
type SelectorService interface {
	Trending(ctx context.Context, limit int) ([]*models.Article, error)
	Featured(ctx context.Context, limit int) ([]*models.Article, error)
	ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
}

// SettingService defines site settings operations
type SettingService interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Put(ctx context.Context, actor models.Actor, key, value string) (*models.Setting, error)
}

// SystemService reports storage health and entity counts
type SystemService interface {
	Stats(ctx context.Context) (*models.Stats, error)
	Health(ctx context.Context) error
}

// Services holds all service interfaces
type Services struct {
	Identity IdentityResolver
	Users    UserService
	Articles ArticleService
	Comments CommentService
	Selector SelectorService
	Settings SettingService
	System   SystemService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, metrics *observability.Metrics) *Services {
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	verifier := auth.NewAssertionVerifier(cfg.Auth.ExternalSecret)

	return &Services{
		Identity: auth.NewResolver(tokens, repos.User),
		Users:    newUserService(repos, tokens, hasher, verifier, log, metrics),
		Articles: newArticleService(repos, log, metrics),
		Comments: newCommentService(repos, log, metrics),
		Selector: newSelectorService(repos, log),
		Settings: newSettingService(repos, log, metrics),
		System:   newSystemService(repos),
	}
}

func now() time.Time {
	return time.Now().UTC()
}
