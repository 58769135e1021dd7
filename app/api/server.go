package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rbarros/podcast-hub/app/auth"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, authService *auth.Auth, allowedOrigin string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())
	r.Use(corsMiddleware(allowedOrigin))

	setupRoutes(r, handler, authService)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, authService *auth.Auth) {
	r.GET("/health", handler.GetHealth)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.GET("/me", authMiddleware(authService), handler.GetCurrentUser)
	}

	r.GET("/podcasts", handler.GetPodcast)
	r.GET("/podcasts/episodes", handler.GetEpisodes)

	missing := r.Group("/missing-episodes")
	{
		missing.GET("", handler.ListMissingEpisodes)
		missing.GET("/all", handler.ListAllMissingEpisodes)
		missing.GET("/stats", handler.GetCatalogStats)
		missing.POST("/import", handler.ImportMissingEpisodes)
		missing.POST("/maintenance/episode-numbers", handler.RederiveEpisodeNumbers)
		missing.POST("/maintenance/base-names", handler.RederiveBaseNames)
	}

	subscriptions := r.Group("/subscriptions", authMiddleware(authService))
	{
		subscriptions.GET("", handler.ListSubscriptions)
		subscriptions.POST("", handler.CreateSubscription)
		subscriptions.DELETE("/:id", handler.DeleteSubscription)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Podcast Hub",
			"endpoints": map[string]string{
				"health":           "/health",
				"podcast":          "/podcasts?url=<feed-url>",
				"episodes":         "/podcasts/episodes?url=<feed-url>",
				"missing_episodes": "/missing-episodes/all?name=<podcast>",
				"subscriptions":    "/subscriptions (requires Bearer token)",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	origin := allowedOrigin
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

const userIDKey = "user_id"

func authMiddleware(authService *auth.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		userID, err := authService.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
