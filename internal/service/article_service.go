package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/validation"
)

// Listing limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type articleService struct {
	repos   *repository.Repositories
	gate    gate
	metrics *observability.Metrics
	log     zerolog.Logger
}

func newArticleService(repos *repository.Repositories, log zerolog.Logger, metrics *observability.Metrics) *articleService {
	l := log.With().Str("service", "articles").Logger()
	return &articleService{
		repos:   repos,
		gate:    gate{log: l, metrics: metrics},
		metrics: metrics,
		log:     l,
	}
}

// Create stores a new draft owned by actor
func (s *articleService) Create(ctx context.Context, actor models.Actor, in *models.ArticleInput) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "articles.create", attribute.String("actor.id", actor.UserID))
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.CreateArticle, access.None); err != nil {
		return nil, err
	}
	if err := validation.ValidateArticleInput(in); err != nil {
		return nil, err
	}

	ts := now()
	article := &models.Article{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Category:   in.Category,
		Tags:       in.Tags,
		Status:     models.ArticleDraft,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.repos.Article.Create(ctx, article); err != nil {
		return nil, err
	}

	s.metrics.ArticleTransition("create")
	s.log.Info().Str("article_id", article.ID).Str("actor_id", actor.UserID).Msg("Article created")
	return article, nil
}

// Get returns an article visible to actor. Drafts of other authors are
// reported as not found.
func (s *articleService) Get(ctx context.Context, actor models.Actor, id string) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "articles.get", attribute.String("article.id", id))
	defer func() { endSpan(span, err) }()

	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil || !canRead(actor, article) {
		return nil, notFound("article", id)
	}
	return article, nil
}

// Update merges patch into the article. Status, counters and published_at
// are never touched.
func (s *articleService) Update(ctx context.Context, actor models.Actor, id string, patch *models.ArticlePatch) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "articles.update", attribute.String("article.id", id))
	defer func() { endSpan(span, err) }()

	var updated *models.Article
	err = s.repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		article, err := s.repos.Article.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if article == nil {
			return notFound("article", id)
		}
		if err := s.gate.check(actor, access.EditArticle, access.Owned(article.AuthorID)); err != nil {
			return err
		}
		if patch.Featured != nil && *patch.Featured != article.Featured {
			if err := s.gate.check(actor, access.FeatureArticle, access.Owned(article.AuthorID)); err != nil {
				return err
			}
		}
		if err := validation.ValidateArticlePatch(patch); err != nil {
			return err
		}

		if patch.Title != nil {
			article.Title = *patch.Title
		}
		if patch.Content != nil {
			article.Content = *patch.Content
		}
		if patch.Category != nil {
			article.Category = *patch.Category
		}
		if patch.Tags != nil {
			article.Tags = *patch.Tags
		}
		if patch.Featured != nil {
			article.Featured = *patch.Featured
		}
		article.UpdatedAt = now()

		if err := s.repos.Article.Update(ctx, article); err != nil {
			return err
		}
		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ArticleTransition("update")
	s.log.Info().Str("article_id", id).Str("actor_id", actor.UserID).Msg("Article updated")
	return updated, nil
}

// Publish moves a draft to published. Publishing a published article is a
// successful no-op that keeps the original published_at.
func (s *articleService) Publish(ctx context.Context, actor models.Actor, id string) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "articles.publish", attribute.String("article.id", id))
	defer func() { endSpan(span, err) }()

	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, notFound("article", id)
	}
	if err := s.gate.check(actor, access.PublishArticle, access.Owned(article.AuthorID)); err != nil {
		return nil, err
	}
	if article.IsPublished() {
		return article, nil
	}

	changed, err := s.repos.Article.MarkPublished(ctx, id, now())
	if err != nil {
		return nil, err
	}

	article, err = s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, notFound("article", id)
	}

	if changed {
		s.metrics.ArticleTransition("publish")
		s.log.Info().Str("article_id", id).Str("actor_id", actor.UserID).Msg("Article published")
	}
	return article, nil
}

// Delete removes the article together with its likes and comments
func (s *articleService) Delete(ctx context.Context, actor models.Actor, id string) (err error) {
	ctx, span := startSpan(ctx, "articles.delete", attribute.String("article.id", id))
	defer func() { endSpan(span, err) }()

	var likes, comments int
	err = s.repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		article, err := s.repos.Article.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if article == nil {
			return notFound("article", id)
		}
		if err := s.gate.check(actor, access.DeleteArticle, access.Owned(article.AuthorID)); err != nil {
			return err
		}

		if likes, err = s.repos.Like.DeleteByArticle(ctx, id); err != nil {
			return err
		}
		if comments, err = s.repos.Comment.DeleteByArticle(ctx, id); err != nil {
			return err
		}
		deleted, err := s.repos.Article.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("article", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.ArticleTransition("delete")
	s.log.Info().
		Str("article_id", id).
		Str("actor_id", actor.UserID).
		Int("likes", likes).
		Int("comments", comments).
		Msg("Article deleted")
	return nil
}

// RecordView adds one view to a published article and returns the new count
func (s *articleService) RecordView(ctx context.Context, id string) (_ int, err error) {
	ctx, span := startSpan(ctx, "articles.record_view", attribute.String("article.id", id))
	defer func() { endSpan(span, err) }()

	views, err := s.repos.Article.IncrementViews(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return 0, notFound("article", id)
	}
	return views, err
}

// ToggleLike flips actor's like on the article. The existence check, the
// like row change and the counter change happen in one transaction.
func (s *articleService) ToggleLike(ctx context.Context, actor models.Actor, id string) (_ *models.LikeResult, err error) {
	ctx, span := startSpan(ctx, "articles.toggle_like",
		attribute.String("article.id", id),
		attribute.String("actor.id", actor.UserID),
	)
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.ToggleLike, access.None); err != nil {
		return nil, err
	}

	result := &models.LikeResult{}
	err = s.repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		article, err := s.repos.Article.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if article == nil || !canRead(actor, article) {
			return notFound("article", id)
		}

		removed, err := s.repos.Like.Delete(ctx, id, actor.UserID)
		if err != nil {
			return err
		}
		delta := -1
		if !removed {
			like := &models.Like{ArticleID: id, UserID: actor.UserID, CreatedAt: now()}
			if err := s.repos.Like.Insert(ctx, like); err != nil {
				return err
			}
			delta = 1
		}

		count, err := s.repos.Article.AdjustLikes(ctx, id, delta)
		if err != nil {
			return err
		}
		result.Liked = delta > 0
		result.LikesCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LikeToggled(result.Liked)
	s.log.Debug().
		Str("article_id", id).
		Str("actor_id", actor.UserID).
		Bool("liked", result.Liked).
		Msg("Like toggled")
	return result, nil
}

// ListByAuthor lists an author's articles including drafts
func (s *articleService) ListByAuthor(ctx context.Context, actor models.Actor, authorID string, limit int) (_ []*models.Article, err error) {
	ctx, span := startSpan(ctx, "articles.list_by_author", attribute.String("author.id", authorID))
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.ListAuthorArticles, access.Owned(authorID)); err != nil {
		return nil, err
	}
	return s.repos.Article.List(ctx, models.ArticleFilter{
		AuthorID: authorID,
		Order:    models.OrderNewest,
		Limit:    clamp(limit, DefaultListLimit, MaxListLimit),
	})
}

// clamp bounds a listing limit to (0, max], using def when limit is not positive
func clamp(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
