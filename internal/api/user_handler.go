package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/service"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, timeout time.Duration, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		timeout:  timeout,
		log:      log.With().Str("handler", "users").Logger(),
	}
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	users, err := h.services.Users.List(ctx, actorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	user, err := h.services.Users.Get(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangeRole handles PUT /v1/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	user, err := h.services.Users.ChangeRole(ctx, actorFrom(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
