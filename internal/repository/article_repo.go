package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `id, title, content, author_id, author_name, category, tags, status, featured,
	likes_count, views_count, created_at, updated_at, published_at`

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		article.ID, article.Title, article.Content, article.AuthorID, article.AuthorName,
		nullString(article.Category), tagsJSON(article.Tags), article.Status, article.Featured,
		article.LikesCount, article.ViewsCount, article.CreatedAt, article.UpdatedAt, article.PublishedAt,
	)
	if err != nil {
		return oops.In("article_repo").With("article_id", article.ID).Wrap(err)
	}
	return nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
}

// LockForUpdate retrieves an article and locks its row
func (r *articleRepo) LockForUpdate(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, id)
}

func (r *articleRepo) getOne(ctx context.Context, query, id string) (*models.Article, error) {
	article, err := scanArticle(r.db.Conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("article_repo").With("article_id", id).Wrap(err)
	}
	return article, nil
}

// Update writes the editable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $2, content = $3, category = $4, tags = $5, featured = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.Conn(ctx).ExecContext(ctx, query,
		article.ID, article.Title, article.Content, nullString(article.Category),
		tagsJSON(article.Tags), article.Featured, article.UpdatedAt,
	)
	if err != nil {
		return oops.In("article_repo").With("article_id", article.ID).Wrap(err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return oops.In("article_repo").With("article_id", article.ID).Wrap(models.ErrNotFound)
	}
	return nil
}

// MarkPublished moves a draft to published, setting published_at once
func (r *articleRepo) MarkPublished(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `
		UPDATE articles
		SET status = 'published', published_at = COALESCE(published_at, $2), updated_at = $2
		WHERE id = $1 AND status = 'draft'
	`, id, at)
	if err != nil {
		return false, oops.In("article_repo").With("article_id", id).Wrap(err)
	}
	return affected(res)
}

// AdjustLikes adds delta to likes_count
func (r *articleRepo) AdjustLikes(ctx context.Context, id string, delta int) (int, error) {
	var count int
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		"UPDATE articles SET likes_count = likes_count + $2 WHERE id = $1 RETURNING likes_count",
		id, delta,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, oops.In("article_repo").With("article_id", id).Wrap(models.ErrNotFound)
	}
	if err != nil {
		return 0, oops.In("article_repo").With("article_id", id).With("delta", delta).Wrap(err)
	}
	return count, nil
}

// IncrementViews adds one view to a published article
func (r *articleRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		"UPDATE articles SET views_count = views_count + 1 WHERE id = $1 AND status = 'published' RETURNING views_count",
		id,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, oops.In("article_repo").With("article_id", id).Wrap(models.ErrNotFound)
	}
	if err != nil {
		return 0, oops.In("article_repo").With("article_id", id).Wrap(err)
	}
	return count, nil
}

// Delete removes an article row
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return false, oops.In("article_repo").With("article_id", id).Wrap(err)
	}
	return affected(res)
}

// List returns articles matching filter
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.AuthorID != "" {
		add("author_id = $%d", filter.AuthorID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Tag != "" {
		add("EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t WHERE lower(t) = lower($%d))", filter.Tag)
	}
	if filter.Featured != nil {
		add("featured = $%d", *filter.Featured)
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch filter.Order {
	case models.OrderTrending:
		query += " ORDER BY likes_count DESC, created_at DESC, id"
	default:
		query += " ORDER BY created_at DESC, id"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.In("article_repo").Wrap(err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, oops.In("article_repo").Wrap(err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, oops.In("article_repo").Wrap(err)
	}
	return count, nil
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var category sql.NullString
	var tags []byte
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Title, &article.Content, &article.AuthorID, &article.AuthorName,
		&category, &tags, &article.Status, &article.Featured,
		&article.LikesCount, &article.ViewsCount, &article.CreatedAt, &article.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Category = category.String
	article.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &article.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of article %s: %w", article.ID, err)
		}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}

// tagsJSON encodes tags for the JSONB column
func tagsJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}
