package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/service"
)

// AuthHandler handles credential endpoints
type AuthHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, timeout time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		timeout:  timeout,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.services.Users.Register(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.services.Users.Login(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// LoginExternal handles POST /v1/auth/external
func (h *AuthHandler) LoginExternal(c *gin.Context) {
	var req struct {
		Assertion string `json:"assertion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Assertion == "" {
		badRequest(c, "assertion is required")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.services.Users.LoginExternal(ctx, req.Assertion)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	user, err := h.services.Users.Me(ctx, actorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
