package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/api/handlers"
	"github.com/carrier-im/carrier/internal/api/middleware"
	"github.com/carrier-im/carrier/internal/crypto"
)

// RouterConfig carries the assembly-time knobs of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins  []string
	SocketPath      string
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// NewRouter assembles the Gin engine: CORS, request logging, rate limiting,
// the versioned REST routes, and the Socket.IO endpoint.
func NewRouter(
	api *handlers.API,
	jwtManager *crypto.JWTManager,
	socketHandler gin.HandlerFunc,
	cfg RouterConfig,
	log *zap.SugaredLogger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitMax > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
		router.Use(limiter.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", api.Register)
			auth.POST("/login", api.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/users", api.ListUsers)
			protected.GET("/users/me", api.Me)

			protected.GET("/conversations", api.ListConversations)
			protected.POST("/conversations", api.CreateConversation)
			protected.GET("/conversations/:id/messages", api.ListMessages)
			protected.POST("/conversations/:id/messages", api.SendMessage)
			protected.GET("/conversations/:id/messages/search", api.SearchMessages)
			protected.POST("/conversations/:id/messages/:messageId/react", api.React)
			protected.POST("/conversations/:id/delivered", api.MarkDelivered)

			protected.GET("/messages/search", api.SearchAllMessages)
		}
	}

	if socketHandler != nil {
		socketPath := cfg.SocketPath
		if socketPath == "" {
			socketPath = "/ws"
		}
		router.Any(socketPath, socketHandler)
		router.Any(socketPath+"/*any", socketHandler)
	}

	return router
}
