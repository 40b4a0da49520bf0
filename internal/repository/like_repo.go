package repository

import (
	"context"

	"github.com/samber/oops"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// likeRepo is the concrete implementation of LikeRepository
type likeRepo struct {
	db *database.DB
}

// NewLikeRepo creates a new like repository
func NewLikeRepo(db *database.DB) LikeRepository {
	return &likeRepo{db: db}
}

// Exists checks if the user has liked the article
func (r *likeRepo) Exists(ctx context.Context, articleID, userID string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM likes WHERE article_id = $1 AND user_id = $2)",
		articleID, userID,
	).Scan(&exists)
	if err != nil {
		return false, oops.In("like_repo").With("article_id", articleID).With("user_id", userID).Wrap(err)
	}
	return exists, nil
}

// Insert records a like. The (article_id, user_id) primary key rejects duplicates.
func (r *likeRepo) Insert(ctx context.Context, like *models.Like) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		"INSERT INTO likes (article_id, user_id, created_at) VALUES ($1, $2, $3)",
		like.ArticleID, like.UserID, like.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return oops.In("like_repo").With("article_id", like.ArticleID).With("user_id", like.UserID).Wrap(models.ErrConflict)
	}
	if err != nil {
		return oops.In("like_repo").With("article_id", like.ArticleID).With("user_id", like.UserID).Wrap(err)
	}
	return nil
}

// Delete removes a like
func (r *likeRepo) Delete(ctx context.Context, articleID, userID string) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		"DELETE FROM likes WHERE article_id = $1 AND user_id = $2",
		articleID, userID,
	)
	if err != nil {
		return false, oops.In("like_repo").With("article_id", articleID).With("user_id", userID).Wrap(err)
	}
	return affected(res)
}

// DeleteByArticle removes every like of an article
func (r *likeRepo) DeleteByArticle(ctx context.Context, articleID string) (int, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, "DELETE FROM likes WHERE article_id = $1", articleID)
	if err != nil {
		return 0, oops.In("like_repo").With("article_id", articleID).Wrap(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountByArticle returns the number of likes of an article
func (r *likeRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM likes WHERE article_id = $1", articleID).Scan(&count); err != nil {
		return 0, oops.In("like_repo").Wrap(err)
	}
	return count, nil
}

// Count returns the total number of likes
func (r *likeRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM likes").Scan(&count); err != nil {
		return 0, oops.In("like_repo").Wrap(err)
	}
	return count, nil
}
