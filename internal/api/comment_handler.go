package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/service"
)

// CommentHandler handles comment submission and moderation endpoints
type CommentHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, timeout time.Duration, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		timeout:  timeout,
		log:      log.With().Str("handler", "comments").Logger(),
	}
}

// Create handles POST /v1/articles/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	comment, err := h.services.Comments.Create(ctx, actorFrom(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListApproved handles GET /v1/articles/:id/comments
func (h *CommentHandler) ListApproved(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	comments, err := h.services.Comments.ListApproved(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// ListPending handles GET /v1/comments/pending?article_id=
func (h *CommentHandler) ListPending(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	comments, err := h.services.Comments.ListPending(ctx, actorFrom(c), c.Query("article_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Approve handles PUT /v1/comments/:id/approve
func (h *CommentHandler) Approve(c *gin.Context) {
	h.moderate(c, h.services.Comments.Approve)
}

// Reject handles PUT /v1/comments/:id/reject
func (h *CommentHandler) Reject(c *gin.Context) {
	h.moderate(c, h.services.Comments.Reject)
}

func (h *CommentHandler) moderate(c *gin.Context, decide func(ctx context.Context, actor models.Actor, id string) (*models.Comment, error)) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	comment, err := decide(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	if err := h.services.Comments.Delete(ctx, actorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
