package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/repository"
)

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyArticle(a *models.Article) *models.Article {
	c := *a
	c.Tags = append([]string{}, a.Tags...)
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func copyComment(cm *models.Comment) *models.Comment {
	c := *cm
	return &c
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.s.write(ctx, "users.Create", func(d *state) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, user.Email) {
				return models.ErrConflict
			}
			if user.ExternalID != "" && u.ExternalID == user.ExternalID {
				return models.ErrConflict
			}
		}
		if _, exists := d.users[user.ID]; exists {
			return models.ErrConflict
		}
		d.users[user.ID] = copyUser(user)
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, "users.GetByID", func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, "users.GetByEmail", func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.find(ctx, "users.GetByExternalID", func(u *models.User) bool {
		return externalID != "" && u.ExternalID == externalID
	})
}

func (r *userRepo) find(ctx context.Context, op string, match func(*models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.s.read(ctx, op, func(d *state) error {
		for _, u := range d.users {
			if match(u) {
				found = copyUser(u)
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *userRepo) LinkExternalID(ctx context.Context, id, externalID string) error {
	return r.s.write(ctx, "users.LinkExternalID", func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return models.ErrNotFound
		}
		for _, other := range d.users {
			if other.ID != id && other.ExternalID == externalID {
				return models.ErrConflict
			}
		}
		c := copyUser(u)
		c.ExternalID = externalID
		c.UpdatedAt = time.Now().UTC()
		d.users[id] = c
		return nil
	})
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role models.Role) (bool, error) {
	updated := false
	err := r.s.write(ctx, "users.UpdateRole", func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return nil
		}
		c := copyUser(u)
		c.Role = role
		c.UpdatedAt = time.Now().UTC()
		d.users[id] = c
		updated = true
		return nil
	})
	return updated, err
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := r.s.read(ctx, "users.List", func(d *state) error {
		for _, u := range d.users {
			users = append(users, copyUser(u))
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, err
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.read(ctx, "users.Count", func(d *state) error {
		n = len(d.users)
		return nil
	})
	return n, err
}

type articleRepo struct{ s *Store }

func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	return r.s.write(ctx, "articles.Create", func(d *state) error {
		if _, exists := d.articles[article.ID]; exists {
			return models.ErrConflict
		}
		d.articles[article.ID] = copyArticle(article)
		return nil
	})
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var found *models.Article
	err := r.s.read(ctx, "articles.GetByID", func(d *state) error {
		if a, ok := d.articles[id]; ok {
			found = copyArticle(a)
		}
		return nil
	})
	return found, err
}

// LockForUpdate is a plain read: inside WithinTx the caller already holds
// the store's write lock
func (r *articleRepo) LockForUpdate(ctx context.Context, id string) (*models.Article, error) {
	var found *models.Article
	err := r.s.read(ctx, "articles.LockForUpdate", func(d *state) error {
		if a, ok := d.articles[id]; ok {
			found = copyArticle(a)
		}
		return nil
	})
	return found, err
}

func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	return r.s.write(ctx, "articles.Update", func(d *state) error {
		a, ok := d.articles[article.ID]
		if !ok {
			return models.ErrNotFound
		}
		c := copyArticle(a)
		c.Title = article.Title
		c.Content = article.Content
		c.Category = article.Category
		c.Tags = append([]string{}, article.Tags...)
		c.Featured = article.Featured
		c.UpdatedAt = article.UpdatedAt
		d.articles[article.ID] = c
		return nil
	})
}

func (r *articleRepo) MarkPublished(ctx context.Context, id string, at time.Time) (bool, error) {
	changed := false
	err := r.s.write(ctx, "articles.MarkPublished", func(d *state) error {
		a, ok := d.articles[id]
		if !ok || a.Status != models.ArticleDraft {
			return nil
		}
		c := copyArticle(a)
		c.Status = models.ArticlePublished
		if c.PublishedAt == nil {
			t := at
			c.PublishedAt = &t
		}
		c.UpdatedAt = at
		d.articles[id] = c
		changed = true
		return nil
	})
	return changed, err
}

func (r *articleRepo) AdjustLikes(ctx context.Context, id string, delta int) (int, error) {
	var count int
	err := r.s.write(ctx, "articles.AdjustLikes", func(d *state) error {
		a, ok := d.articles[id]
		if !ok {
			return models.ErrNotFound
		}
		c := copyArticle(a)
		c.LikesCount += delta
		d.articles[id] = c
		count = c.LikesCount
		return nil
	})
	return count, err
}

func (r *articleRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var count int
	err := r.s.write(ctx, "articles.IncrementViews", func(d *state) error {
		a, ok := d.articles[id]
		if !ok || a.Status != models.ArticlePublished {
			return models.ErrNotFound
		}
		c := copyArticle(a)
		c.ViewsCount++
		d.articles[id] = c
		count = c.ViewsCount
		return nil
	})
	return count, err
}

func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.s.write(ctx, "articles.Delete", func(d *state) error {
		if _, ok := d.articles[id]; ok {
			delete(d.articles, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	articles := make([]*models.Article, 0)
	err := r.s.read(ctx, "articles.List", func(d *state) error {
		for _, a := range d.articles {
			if matchArticle(a, filter) {
				articles = append(articles, copyArticle(a))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if filter.Order == models.OrderTrending && a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if filter.Limit > 0 && len(articles) > filter.Limit {
		articles = articles[:filter.Limit]
	}
	return articles, nil
}

func matchArticle(a *models.Article, f models.ArticleFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && a.AuthorID != f.AuthorID {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Featured != nil && a.Featured != *f.Featured {
		return false
	}
	if f.Tag != "" {
		for _, t := range a.Tags {
			if strings.EqualFold(t, f.Tag) {
				return true
			}
		}
		return false
	}
	return true
}

func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.read(ctx, "articles.Count", func(d *state) error {
		n = len(d.articles)
		return nil
	})
	return n, err
}

type likeRepo struct{ s *Store }

func (r *likeRepo) Exists(ctx context.Context, articleID, userID string) (bool, error) {
	var exists bool
	err := r.s.read(ctx, "likes.Exists", func(d *state) error {
		_, exists = d.likes[likeKey{articleID, userID}]
		return nil
	})
	return exists, err
}

func (r *likeRepo) Insert(ctx context.Context, like *models.Like) error {
	return r.s.write(ctx, "likes.Insert", func(d *state) error {
		key := likeKey{like.ArticleID, like.UserID}
		if _, exists := d.likes[key]; exists {
			return models.ErrConflict
		}
		if _, ok := d.articles[like.ArticleID]; !ok {
			return models.ErrNotFound
		}
		c := *like
		d.likes[key] = &c
		return nil
	})
}

func (r *likeRepo) Delete(ctx context.Context, articleID, userID string) (bool, error) {
	deleted := false
	err := r.s.write(ctx, "likes.Delete", func(d *state) error {
		key := likeKey{articleID, userID}
		if _, ok := d.likes[key]; ok {
			delete(d.likes, key)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *likeRepo) DeleteByArticle(ctx context.Context, articleID string) (int, error) {
	n := 0
	err := r.s.write(ctx, "likes.DeleteByArticle", func(d *state) error {
		for key := range d.likes {
			if key.articleID == articleID {
				delete(d.likes, key)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *likeRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	n := 0
	err := r.s.read(ctx, "likes.CountByArticle", func(d *state) error {
		for key := range d.likes {
			if key.articleID == articleID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *likeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.read(ctx, "likes.Count", func(d *state) error {
		n = len(d.likes)
		return nil
	})
	return n, err
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return r.s.write(ctx, "comments.Create", func(d *state) error {
		if _, ok := d.articles[comment.ArticleID]; !ok {
			return models.ErrNotFound
		}
		if _, exists := d.comments[comment.ID]; exists {
			return models.ErrConflict
		}
		d.comments[comment.ID] = copyComment(comment)
		return nil
	})
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var found *models.Comment
	err := r.s.read(ctx, "comments.GetByID", func(d *state) error {
		if c, ok := d.comments[id]; ok {
			found = copyComment(c)
		}
		return nil
	})
	return found, err
}

func (r *commentRepo) SetStatus(ctx context.Context, id string, from, to models.CommentStatus, at time.Time) (bool, error) {
	changed := false
	err := r.s.write(ctx, "comments.SetStatus", func(d *state) error {
		c, ok := d.comments[id]
		if !ok || c.Status != from {
			return nil
		}
		updated := copyComment(c)
		updated.Status = to
		updated.UpdatedAt = at
		d.comments[id] = updated
		changed = true
		return nil
	})
	return changed, err
}

func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.s.write(ctx, "comments.Delete", func(d *state) error {
		if _, ok := d.comments[id]; ok {
			delete(d.comments, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *commentRepo) DeleteByArticle(ctx context.Context, articleID string) (int, error) {
	n := 0
	err := r.s.write(ctx, "comments.DeleteByArticle", func(d *state) error {
		for id, c := range d.comments {
			if c.ArticleID == articleID {
				delete(d.comments, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *commentRepo) ListByArticle(ctx context.Context, articleID string, status models.CommentStatus) ([]*models.Comment, error) {
	comments, err := r.collect(ctx, "comments.ListByArticle", func(d *state, c *models.Comment) bool {
		return c.ArticleID == articleID && c.Status == status
	})
	sortComments(comments, false)
	return comments, err
}

func (r *commentRepo) ListPending(ctx context.Context, scope repository.PendingScope) ([]*models.Comment, error) {
	comments, err := r.collect(ctx, "comments.ListPending", func(d *state, c *models.Comment) bool {
		if c.Status != models.CommentPending {
			return false
		}
		if scope.ArticleID != "" && c.ArticleID != scope.ArticleID {
			return false
		}
		if scope.ArticleAuthorID != "" {
			a, ok := d.articles[c.ArticleID]
			if !ok || a.AuthorID != scope.ArticleAuthorID {
				return false
			}
		}
		return true
	})
	sortComments(comments, true)
	return comments, err
}

func (r *commentRepo) collect(ctx context.Context, op string, match func(*state, *models.Comment) bool) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := r.s.read(ctx, op, func(d *state) error {
		for _, c := range d.comments {
			if match(d, c) {
				comments = append(comments, copyComment(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func sortComments(comments []*models.Comment, newestFirst bool) {
	sort.Slice(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.read(ctx, "comments.Count", func(d *state) error {
		n = len(d.comments)
		return nil
	})
	return n, err
}

type settingRepo struct{ s *Store }

func (r *settingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	var found *models.Setting
	err := r.s.read(ctx, "settings.Get", func(d *state) error {
		if st, ok := d.settings[key]; ok {
			c := *st
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *settingRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.s.write(ctx, "settings.Upsert", func(d *state) error {
		c := *setting
		if setting.Value != nil {
			v := *setting.Value
			c.Value = &v
		}
		d.settings[setting.Key] = &c
		return nil
	})
}

var (
	_ repository.Store             = (*Store)(nil)
	_ repository.UserRepository    = (*userRepo)(nil)
	_ repository.ArticleRepository = (*articleRepo)(nil)
	_ repository.LikeRepository    = (*likeRepo)(nil)
	_ repository.CommentRepository = (*commentRepo)(nil)
	_ repository.SettingRepository = (*settingRepo)(nil)
)
