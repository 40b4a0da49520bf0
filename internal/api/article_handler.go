package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/service"
)

// ArticleHandler handles article lifecycle and listing endpoints
type ArticleHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, timeout time.Duration, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		timeout:  timeout,
		log:      log.With().Str("handler", "articles").Logger(),
	}
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var in models.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	article, err := h.services.Articles.Create(ctx, actorFrom(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id. Reading a published article counts as
// a view.
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	article, err := h.services.Articles.Get(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if article.IsPublished() {
		views, err := h.services.Articles.RecordView(ctx, article.ID)
		if err != nil {
			h.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to record view")
		} else {
			article.ViewsCount = views
		}
	}
	c.JSON(http.StatusOK, article)
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var patch models.ArticlePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	article, err := h.services.Articles.Update(ctx, actorFrom(c), c.Param("id"), &patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Publish handles PUT /v1/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	article, err := h.services.Articles.Publish(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	if err := h.services.Articles.Delete(ctx, actorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordView handles POST /v1/articles/:id/views
func (h *ArticleHandler) RecordView(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	views, err := h.services.Articles.RecordView(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views_count": views})
}

// ToggleLike handles POST /v1/articles/:id/like
func (h *ArticleHandler) ToggleLike(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	result, err := h.services.Articles.ToggleLike(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByAuthor handles GET /v1/users/:id/articles
func (h *ArticleHandler) ListByAuthor(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	articles, err := h.services.Articles.ListByAuthor(ctx, actorFrom(c), c.Param("id"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// ListPublished handles GET /v1/articles?category=&author_id=&tag=&featured=&limit=
func (h *ArticleHandler) ListPublished(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filter := models.ArticleFilter{
		Category: c.Query("category"),
		AuthorID: c.Query("author_id"),
		Tag:      c.Query("tag"),
		Limit:    limit,
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, h.log, models.NewValidationError("featured", "must be a boolean"))
			return
		}
		filter.Featured = &featured
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	articles, err := h.services.Selector.ListPublished(ctx, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// Trending handles GET /v1/articles/trending
func (h *ArticleHandler) Trending(c *gin.Context) {
	h.ranked(c, h.services.Selector.Trending)
}

// Featured handles GET /v1/articles/featured
func (h *ArticleHandler) Featured(c *gin.Context) {
	h.ranked(c, h.services.Selector.Featured)
}

func (h *ArticleHandler) ranked(c *gin.Context, list func(ctx context.Context, limit int) ([]*models.Article, error)) {
	limit, err := queryLimit(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	articles, err := list(ctx, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}
