//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/service"
)

// testDB is shared by every test in the package and truncated between them
var testDB *database.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("content_test"),
		postgres.WithUsername("content"),
		postgres.WithPassword("content"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to open database: " + err.Error())
	}
	testDB = database.Wrap(sqlDB, zerolog.Nop())
	if err := testDB.RunMigrations("../../migrations"); err != nil {
		_ = sqlDB.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}

	code := m.Run()

	_ = sqlDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func freshRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	_, err := testDB.ExecContext(context.Background(),
		"TRUNCATE comments, likes, articles, settings, users CASCADE")
	require.NoError(t, err)
	return repository.New(testDB)
}

func createUser(t *testing.T, repos *repository.Repositories, id string, role models.Role) *models.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &models.User{
		ID: id, Email: id + "@example.com", Name: id, Role: role,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func createArticle(t *testing.T, repos *repository.Repositories, id, authorID string, likes int, created time.Time) *models.Article {
	t.Helper()
	a := &models.Article{
		ID: id, Title: "title " + id, Content: "content", AuthorID: authorID, AuthorName: "author",
		Tags: []string{"Go", "SQL"}, Status: models.ArticleDraft, LikesCount: likes,
		CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, repos.Article.Create(context.Background(), a))
	return a
}

func TestUserRepo_UniqueEmailAndLookup(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	createUser(t, repos, "u1", models.RoleReader)

	dup := &models.User{ID: "u2", Email: "U1@example.com", Name: "dup", Role: models.RoleReader,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	assert.ErrorIs(t, repos.User.Create(ctx, dup), models.ErrConflict)

	got, err := repos.User.GetByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	missing, err := repos.User.GetByID(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repos.User.LinkExternalID(ctx, "u1", "ext-1"))
	got, err = repos.User.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	ok, err := repos.User.UpdateRole(ctx, "u1", models.RoleWriter)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.User.UpdateRole(ctx, "nobody", models.RoleWriter)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArticleRepo_PublishAndCounters(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	author := createUser(t, repos, "w1", models.RoleWriter)
	base := time.Now().UTC().Truncate(time.Microsecond)
	createArticle(t, repos, "a1", author.ID, 0, base)

	_, err := repos.Article.IncrementViews(ctx, "a1")
	assert.ErrorIs(t, err, models.ErrNotFound, "drafts do not count views")

	changed, err := repos.Article.MarkPublished(ctx, "a1", base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repos.Article.MarkPublished(ctx, "a1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	a, err := repos.Article.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.PublishedAt)
	assert.True(t, a.PublishedAt.Equal(base.Add(time.Minute)))
	assert.Equal(t, []string{"Go", "SQL"}, a.Tags)

	views, err := repos.Article.IncrementViews(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, views)

	likes, err := repos.Article.AdjustLikes(ctx, "a1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	// likes_count has a non-negative check constraint
	_, err = repos.Article.AdjustLikes(ctx, "a1", -2)
	assert.Error(t, err)
}

func TestArticleRepo_ListOrderingAndFilters(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	author := createUser(t, repos, "w1", models.RoleWriter)
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i, likes := range []int{5, 3, 3, 1} {
		id := fmt.Sprintf("a%d", i)
		createArticle(t, repos, id, author.ID, likes, base.Add(time.Duration(i)*time.Minute))
		_, err := repos.Article.MarkPublished(ctx, id, base)
		require.NoError(t, err)
	}
	createArticle(t, repos, "draft", author.ID, 100, base)

	list, err := repos.Article.List(ctx, models.ArticleFilter{
		Status: models.ArticlePublished, Order: models.OrderTrending, Limit: 10,
	})
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	// ties on likes break on newest first
	assert.Equal(t, []string{"a0", "a2", "a1", "a3"}, ids)

	tagged, err := repos.Article.List(ctx, models.ArticleFilter{Status: models.ArticlePublished, Tag: "sql"})
	require.NoError(t, err)
	assert.Len(t, tagged, 4)

	limited, err := repos.Article.List(ctx, models.ArticleFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLikeRepo_PrimaryKey(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	author := createUser(t, repos, "w1", models.RoleWriter)
	reader := createUser(t, repos, "r1", models.RoleReader)
	createArticle(t, repos, "a1", author.ID, 0, time.Now().UTC())

	like := &models.Like{ArticleID: "a1", UserID: reader.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Like.Insert(ctx, like))
	assert.ErrorIs(t, repos.Like.Insert(ctx, like), models.ErrConflict)

	removed, err := repos.Like.Delete(ctx, "a1", reader.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repos.Like.Delete(ctx, "a1", reader.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCommentRepo_StatusCompareAndSet(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	author := createUser(t, repos, "w1", models.RoleWriter)
	reader := createUser(t, repos, "r1", models.RoleReader)
	createArticle(t, repos, "a1", author.ID, 0, time.Now().UTC())

	now := time.Now().UTC()
	c := &models.Comment{ID: "c1", ArticleID: "a1", UserID: reader.ID, UserName: "r1",
		Content: "hi", Status: models.CommentPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Comment.Create(ctx, c))

	pending, err := repos.Comment.ListPending(ctx, repository.PendingScope{ArticleAuthorID: author.ID})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	pending, err = repos.Comment.ListPending(ctx, repository.PendingScope{ArticleAuthorID: reader.ID})
	require.NoError(t, err)
	assert.Empty(t, pending)

	changed, err := repos.Comment.SetStatus(ctx, "c1", models.CommentPending, models.CommentApproved, now)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repos.Comment.SetStatus(ctx, "c1", models.CommentPending, models.CommentRejected, now)
	require.NoError(t, err)
	assert.False(t, changed)

	approved, err := repos.Comment.ListByArticle(ctx, "a1", models.CommentApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestSettingRepo_Upsert(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()

	missing, err := repos.Setting.Get(ctx, "site.title")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, v := range []string{"One", "Two"} {
		value := v
		require.NoError(t, repos.Setting.Upsert(ctx, &models.Setting{Key: "site.title", Value: &value, UpdatedAt: time.Now().UTC()}))
	}
	got, err := repos.Setting.Get(ctx, "site.title")
	require.NoError(t, err)
	require.NotNil(t, got.Value)
	assert.Equal(t, "Two", *got.Value)
}

func TestWithinTx_RollsBack(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	author := createUser(t, repos, "w1", models.RoleWriter)
	createArticle(t, repos, "a1", author.ID, 0, time.Now().UTC())

	err := repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repos.Article.AdjustLikes(ctx, "a1", 1); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	a, err := repos.Article.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Zero(t, a.LikesCount)
}

func TestService_ConcurrentLikesAndCascade(t *testing.T) {
	repos := freshRepos(t)
	ctx := context.Background()
	cfg := &config.Config{
		Store: config.StorePostgres,
		Auth:  config.AuthConfig{JWTSecret: "it", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
	}
	svc := service.NewServices(repos, cfg, zerolog.Nop(), nil)

	author := models.ActorFor(createUser(t, repos, "w1", models.RoleWriter))
	a, err := svc.Articles.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Articles.Publish(ctx, author, a.ID)
	require.NoError(t, err)

	const n = 20
	readers := make([]models.Actor, n)
	for i := range readers {
		readers[i] = models.ActorFor(createUser(t, repos, fmt.Sprintf("r%02d", i), models.RoleReader))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, r := range readers {
		wg.Add(1)
		go func(actor models.Actor) {
			defer wg.Done()
			if _, err := svc.Articles.ToggleLike(ctx, actor, a.ID); err != nil {
				errs <- err
			}
		}(r)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Articles.Get(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.LikesCount)
	rows, err := repos.Like.CountByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, n, rows)

	_, err = svc.Comments.Create(ctx, readers[0], a.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, svc.Articles.Delete(ctx, author, a.ID))

	stats, err := svc.System.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Articles)
	assert.Zero(t, stats.Likes)
	assert.Zero(t, stats.Comments)
}
