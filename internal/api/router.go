package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, metrics *observability.Metrics) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(authMiddleware(services.Identity, log))

	timeout := cfg.Server.RequestTimeout

	// Handlers
	authHandler := NewAuthHandler(services, timeout, log)
	userHandler := NewUserHandler(services, timeout, log)
	articleHandler := NewArticleHandler(services, timeout, log)
	commentHandler := NewCommentHandler(services, timeout, log)
	settingHandler := NewSettingHandler(services, timeout, log)

	// Operational endpoints
	router.GET("/health", healthCheck(services, log))
	router.GET("/stats", statsHandler(services, log))
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API v1
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/external", authHandler.LoginExternal)
			auth.GET("/me", authHandler.Me)
		}

		users := v1.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id/role", userHandler.ChangeRole)
			users.GET("/:id/articles", articleHandler.ListByAuthor)
		}

		articles := v1.Group("/articles")
		{
			articles.POST("", articleHandler.Create)
			articles.GET("", articleHandler.ListPublished)
			articles.GET("/trending", articleHandler.Trending)
			articles.GET("/featured", articleHandler.Featured)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Update)
			articles.DELETE("/:id", articleHandler.Delete)
			articles.PUT("/:id/publish", articleHandler.Publish)
			articles.POST("/:id/views", articleHandler.RecordView)
			articles.POST("/:id/like", articleHandler.ToggleLike)
			articles.GET("/:id/comments", commentHandler.ListApproved)
			articles.POST("/:id/comments", commentHandler.Create)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("/pending", commentHandler.ListPending)
			comments.PUT("/:id/approve", commentHandler.Approve)
			comments.PUT("/:id/reject", commentHandler.Reject)
			comments.DELETE("/:id", commentHandler.Delete)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("/:key", settingHandler.Get)
			settings.PUT("/:key", settingHandler.Put)
		}
	}

	return router
}

// healthCheck returns the health status, including the storage collaborator
func healthCheck(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := services.System.Health(ctx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "content-platform-api",
		})
	}
}

// statsHandler returns entity counts
func statsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.System.Stats(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"database":  stats,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

const actorKey = "actor"

// authMiddleware resolves the bearer token into an actor. A bad token on a
// read is served as anonymous; on a mutation it is rejected.
func authMiddleware(identity service.IdentityResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		actor, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrInvalidCredential) {
				respondError(c, log, err)
				c.Abort()
				return
			}
			if isMutation(c.Request.Method) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			actor = models.Anonymous
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return header
}

func isMutation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// actorFrom returns the actor set by authMiddleware
func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Anonymous
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
