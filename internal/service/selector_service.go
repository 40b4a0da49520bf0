package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/repository"
)

// DefaultRankedLimit is the size of trending and featured lists when the
// caller gives none
const DefaultRankedLimit = 10

// selectorService derives read-only views over published articles
type selectorService struct {
	articles repository.ArticleRepository
	log      zerolog.Logger
}

func newSelectorService(repos *repository.Repositories, log zerolog.Logger) *selectorService {
	return &selectorService{
		articles: repos.Article,
		log:      log.With().Str("service", "selector").Logger(),
	}
}

// Trending returns published articles by likes descending, newest first on ties
func (s *selectorService) Trending(ctx context.Context, limit int) (_ []*models.Article, err error) {
	limit = clamp(limit, DefaultRankedLimit, MaxListLimit)
	ctx, span := startSpan(ctx, "selector.trending", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()

	return s.articles.List(ctx, models.ArticleFilter{
		Status: models.ArticlePublished,
		Order:  models.OrderTrending,
		Limit:  limit,
	})
}

// Featured returns featured published articles, newest first
func (s *selectorService) Featured(ctx context.Context, limit int) (_ []*models.Article, err error) {
	limit = clamp(limit, DefaultRankedLimit, MaxListLimit)
	ctx, span := startSpan(ctx, "selector.featured", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()

	featured := true
	return s.articles.List(ctx, models.ArticleFilter{
		Status:   models.ArticlePublished,
		Featured: &featured,
		Order:    models.OrderNewest,
		Limit:    limit,
	})
}

// ListPublished returns published articles matching filter, newest first.
// The status and order of filter are always overridden.
func (s *selectorService) ListPublished(ctx context.Context, filter models.ArticleFilter) (_ []*models.Article, err error) {
	filter.Status = models.ArticlePublished
	filter.Order = models.OrderNewest
	filter.Limit = clamp(filter.Limit, DefaultListLimit, MaxListLimit)

	ctx, span := startSpan(ctx, "selector.list_published",
		attribute.String("filter.category", filter.Category),
		attribute.String("filter.author_id", filter.AuthorID),
		attribute.String("filter.tag", filter.Tag),
	)
	defer func() { endSpan(span, err) }()

	return s.articles.List(ctx, filter)
}
