package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/validation"
)

type commentService struct {
	repos   *repository.Repositories
	gate    gate
	metrics *observability.Metrics
	log     zerolog.Logger
}

func newCommentService(repos *repository.Repositories, log zerolog.Logger, metrics *observability.Metrics) *commentService {
	l := log.With().Str("service", "comments").Logger()
	return &commentService{
		repos:   repos,
		gate:    gate{log: l, metrics: metrics},
		metrics: metrics,
		log:     l,
	}
}

// Create stores a pending comment on an article the actor can read
func (s *commentService) Create(ctx context.Context, actor models.Actor, articleID, content string) (_ *models.Comment, err error) {
	ctx, span := startSpan(ctx, "comments.create", attribute.String("article.id", articleID))
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.CreateComment, access.None); err != nil {
		return nil, err
	}
	content, err = validation.ValidateCommentContent(content)
	if err != nil {
		return nil, err
	}

	ts := now()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    actor.UserID,
		UserName:  actor.Name,
		Content:   content,
		Status:    models.CommentPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	// the article lock keeps a concurrent delete from orphaning the comment
	err = s.repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		article, err := s.repos.Article.LockForUpdate(ctx, articleID)
		if err != nil {
			return err
		}
		if article == nil || !canRead(actor, article) {
			return notFound("article", articleID)
		}
		return s.repos.Comment.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("comment_id", comment.ID).Str("article_id", articleID).Str("actor_id", actor.UserID).Msg("Comment submitted")
	return comment, nil
}

// Approve makes a pending comment publicly visible
func (s *commentService) Approve(ctx context.Context, actor models.Actor, id string) (*models.Comment, error) {
	return s.moderate(ctx, actor, id, models.CommentApproved)
}

// Reject soft-removes a pending comment
func (s *commentService) Reject(ctx context.Context, actor models.Actor, id string) (*models.Comment, error) {
	return s.moderate(ctx, actor, id, models.CommentRejected)
}

func (s *commentService) moderate(ctx context.Context, actor models.Actor, id string, to models.CommentStatus) (_ *models.Comment, err error) {
	ctx, span := startSpan(ctx, "comments.moderate",
		attribute.String("comment.id", id),
		attribute.String("comment.decision", string(to)),
	)
	defer func() { endSpan(span, err) }()

	comment, article, err := s.commentWithArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.check(actor, access.ModerateComment, access.Owned(article.AuthorID)); err != nil {
		return nil, err
	}
	if comment.Status != models.CommentPending {
		return nil, fmt.Errorf("%w: comment %s is already %s", models.ErrInvalidTransition, id, comment.Status)
	}

	ts := now()
	changed, err := s.repos.Comment.SetStatus(ctx, id, models.CommentPending, to, ts)
	if err != nil {
		return nil, err
	}
	if !changed {
		// another moderator decided first, or the comment was deleted
		current, err := s.repos.Comment.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, notFound("comment", id)
		}
		return nil, fmt.Errorf("%w: comment %s is already %s", models.ErrInvalidTransition, id, current.Status)
	}

	comment.Status = to
	comment.UpdatedAt = ts
	s.metrics.CommentModerated(string(to))
	s.log.Info().Str("comment_id", id).Str("status", string(to)).Str("actor_id", actor.UserID).Msg("Comment moderated")
	return comment, nil
}

// Delete removes a comment in any status
func (s *commentService) Delete(ctx context.Context, actor models.Actor, id string) (err error) {
	ctx, span := startSpan(ctx, "comments.delete", attribute.String("comment.id", id))
	defer func() { endSpan(span, err) }()

	_, article, err := s.commentWithArticle(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.check(actor, access.DeleteComment, access.Owned(article.AuthorID)); err != nil {
		return err
	}

	deleted, err := s.repos.Comment.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("comment", id)
	}

	s.metrics.CommentModerated("deleted")
	s.log.Info().Str("comment_id", id).Str("actor_id", actor.UserID).Msg("Comment deleted")
	return nil
}

// ListApproved returns an article's approved comments, oldest first
func (s *commentService) ListApproved(ctx context.Context, actor models.Actor, articleID string) (_ []*models.Comment, err error) {
	ctx, span := startSpan(ctx, "comments.list_approved", attribute.String("article.id", articleID))
	defer func() { endSpan(span, err) }()

	if _, err := s.readableArticle(ctx, actor, articleID); err != nil {
		return nil, err
	}
	return s.repos.Comment.ListByArticle(ctx, articleID, models.CommentApproved)
}

// ListPending returns pending comments the actor may moderate, newest first.
// Admins see every article; writers see their own articles. articleID
// narrows the result further and never widens it.
func (s *commentService) ListPending(ctx context.Context, actor models.Actor, articleID string) (_ []*models.Comment, err error) {
	ctx, span := startSpan(ctx, "comments.list_pending", attribute.String("actor.id", actor.UserID))
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.ListPendingComments, access.None); err != nil {
		return nil, err
	}

	scope := repository.PendingScope{ArticleID: articleID}
	if !access.CanPerform(actor, access.ModerateComment, access.None) {
		scope.ArticleAuthorID = actor.UserID
	}
	return s.repos.Comment.ListPending(ctx, scope)
}

func (s *commentService) readableArticle(ctx context.Context, actor models.Actor, articleID string) (*models.Article, error) {
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil || !canRead(actor, article) {
		return nil, notFound("article", articleID)
	}
	return article, nil
}

func (s *commentService) commentWithArticle(ctx context.Context, id string) (*models.Comment, *models.Article, error) {
	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if comment == nil {
		return nil, nil, notFound("comment", id)
	}
	article, err := s.repos.Article.GetByID(ctx, comment.ArticleID)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, notFound("article", comment.ArticleID)
	}
	return comment, article, nil
}
