package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/service"
)

// SettingHandler handles site settings
type SettingHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(services *service.Services, timeout time.Duration, log zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		services: services,
		timeout:  timeout,
		log:      log.With().Str("handler", "settings").Logger(),
	}
}

// Get handles GET /v1/settings/:key
func (h *SettingHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	setting, err := h.services.Settings.Get(ctx, c.Param("key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// Put handles PUT /v1/settings/:key
func (h *SettingHandler) Put(c *gin.Context) {
	var req struct {
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		badRequest(c, "value is required")
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	setting, err := h.services.Settings.Put(ctx, actorFrom(c), c.Param("key"), *req.Value)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
