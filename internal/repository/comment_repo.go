package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `c.id, c.article_id, c.user_id, c.user_name, c.content, c.status, c.created_at, c.updated_at`

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, user_id, user_name, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.UserID, comment.UserName,
		comment.Content, comment.Status, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return oops.In("comment_repo").With("comment_id", comment.ID).With("article_id", comment.ArticleID).Wrap(err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c WHERE c.id = $1`

	comment, err := scanComment(r.db.Conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("comment_repo").With("comment_id", id).Wrap(err)
	}
	return comment, nil
}

// SetStatus moves a comment between statuses with a compare-and-set on from
func (r *commentRepo) SetStatus(ctx context.Context, id string, from, to models.CommentStatus, at time.Time) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		"UPDATE comments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2",
		id, from, to, at,
	)
	if err != nil {
		return false, oops.In("comment_repo").With("comment_id", id).With("to", to).Wrap(err)
	}
	return affected(res)
}

// Delete removes a comment
func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return false, oops.In("comment_repo").With("comment_id", id).Wrap(err)
	}
	return affected(res)
}

// DeleteByArticle removes every comment of an article
func (r *commentRepo) DeleteByArticle(ctx context.Context, articleID string) (int, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, "DELETE FROM comments WHERE article_id = $1", articleID)
	if err != nil {
		return 0, oops.In("comment_repo").With("article_id", articleID).Wrap(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListByArticle returns an article's comments with the given status, oldest first
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string, status models.CommentStatus) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments c
		WHERE c.article_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC, c.id
	`
	return r.list(ctx, query, articleID, status)
}

// ListPending returns pending comments within scope, newest first
func (r *commentRepo) ListPending(ctx context.Context, scope PendingScope) ([]*models.Comment, error) {
	where := []string{"c.status = $1"}
	args := []interface{}{models.CommentPending}

	if scope.ArticleAuthorID != "" {
		args = append(args, scope.ArticleAuthorID)
		where = append(where, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if scope.ArticleID != "" {
		args = append(args, scope.ArticleID)
		where = append(where, fmt.Sprintf("c.article_id = $%d", len(args)))
	}

	query := `
		SELECT ` + commentColumns + ` FROM comments c
		JOIN articles a ON a.id = c.article_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY c.created_at DESC, c.id
	`
	return r.list(ctx, query, args...)
}

func (r *commentRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.In("comment_repo").Wrap(err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, oops.In("comment_repo").Wrap(err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count); err != nil {
		return 0, oops.In("comment_repo").Wrap(err)
	}
	return count, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	err := row.Scan(
		&comment.ID, &comment.ArticleID, &comment.UserID, &comment.UserName,
		&comment.Content, &comment.Status, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
