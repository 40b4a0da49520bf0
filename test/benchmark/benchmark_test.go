package benchmark

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/repository/memory"
	"github.com/content-platform-api/internal/service"
	"github.com/content-platform-api/internal/validation"
)

func setup(b *testing.B) (*service.Services, *repository.Repositories) {
	b.Helper()
	cfg := &config.Config{
		Store: config.StoreMemory,
		Auth:  config.AuthConfig{JWTSecret: "bench", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
	}
	repos := memory.New().Repositories()
	return service.NewServices(repos, cfg, zerolog.Nop(), nil), repos
}

func seedUsers(b *testing.B, repos *repository.Repositories, n int, role models.Role) []models.Actor {
	b.Helper()
	actors := make([]models.Actor, n)
	now := time.Now().UTC()
	for i := range actors {
		u := &models.User{
			ID:        fmt.Sprintf("%s-%06d", role, i),
			Email:     fmt.Sprintf("%s%06d@test.com", role, i),
			Name:      fmt.Sprintf("User %06d", i),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.User.Create(context.Background(), u); err != nil {
			b.Fatal(err)
		}
		actors[i] = models.ActorFor(u)
	}
	return actors
}

func seedPublished(b *testing.B, svc *service.Services, author models.Actor, n int) []*models.Article {
	b.Helper()
	ctx := context.Background()
	articles := make([]*models.Article, n)
	for i := range articles {
		a, err := svc.Articles.Create(ctx, author, &models.ArticleInput{
			Title:   fmt.Sprintf("Article %d", i),
			Content: "content",
			Tags:    []string{"bench"},
		})
		if err != nil {
			b.Fatal(err)
		}
		if articles[i], err = svc.Articles.Publish(ctx, author, a.ID); err != nil {
			b.Fatal(err)
		}
	}
	return articles
}

// BenchmarkToggleLikeParallel measures contended like toggles on one article
func BenchmarkToggleLikeParallel(b *testing.B) {
	svc, repos := setup(b)
	author := seedUsers(b, repos, 1, models.RoleWriter)[0]
	readers := seedUsers(b, repos, 256, models.RoleReader)
	article := seedPublished(b, svc, author, 1)[0]

	var next atomic.Int64
	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			actor := readers[next.Add(1)%int64(len(readers))]
			if _, err := svc.Articles.ToggleLike(ctx, actor, article.ID); err != nil {
				b.Error(err)
				return
			}
		}
	})

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "toggles/sec")
}

// BenchmarkTrending measures ranking over 1000 published articles
func BenchmarkTrending(b *testing.B) {
	svc, repos := setup(b)
	author := seedUsers(b, repos, 1, models.RoleWriter)[0]
	readers := seedUsers(b, repos, 10, models.RoleReader)
	articles := seedPublished(b, svc, author, 1000)

	ctx := context.Background()
	for i, a := range articles {
		for _, r := range readers[:i%len(readers)] {
			if _, err := svc.Articles.ToggleLike(ctx, r, a.ID); err != nil {
				b.Fatal(err)
			}
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Selector.Trending(ctx, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCanPerform measures a permission decision
func BenchmarkCanPerform(b *testing.B) {
	actor := models.Actor{UserID: "w1", Role: models.RoleWriter}
	res := access.Owned("w2")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		access.CanPerform(actor, access.ModerateComment, res)
	}
}

// BenchmarkValidateArticleInput measures input normalization
func BenchmarkValidateArticleInput(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		in := &models.ArticleInput{
			Title:    "  A reasonably long title for an article  ",
			Content:  "Body text",
			Category: "engineering",
			Tags:     []string{"Go", "go", "Databases", " testing "},
		}
		if err := validation.ValidateArticleInput(in); err != nil {
			b.Fatal(err)
		}
	}
}
