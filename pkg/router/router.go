package router

import (
	"ai-finance-chat/backend/internal/api"
	"ai-finance-chat/backend/pkg/di"
	"ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/logger"
	"ai-finance-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every request gets a request-scoped logger
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	limiterOpts := middleware.DefaultRateLimiterOptions()
	if container.Config.Security.RateLimit > 0 {
		limiterOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	}
	if container.Config.Security.RateLimitBurst > 0 {
		limiterOpts.Burst = container.Config.Security.RateLimitBurst
	}
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Container.Config.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuth(r.Container.JWTService)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	chatHandler := api.NewChatHandler(r.Container.ChatService)
	conversationHandler := api.NewConversationHandler(r.Container.ConversationService)

	r.setupHealthRoutes()

	v1 := r.Engine.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	chatRoutes := v1.Group("/chat")
	chatRoutes.Use(jwtAuth)
	{
		chatRoutes.POST("", chatHandler.SendMessage)
		chatRoutes.GET("/models", chatHandler.ListModels)
		chatRoutes.GET("/health", chatHandler.Health)

		chatRoutes.GET("/conversations", conversationHandler.List)
		chatRoutes.GET("/conversations/:id", conversationHandler.Get)
		chatRoutes.PUT("/conversations/:id", conversationHandler.Update)
		chatRoutes.DELETE("/conversations/:id", conversationHandler.Delete)

		chatRoutes.GET("/messages/search", conversationHandler.Search)
		chatRoutes.GET("/stats", conversationHandler.Stats)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "" || allowed["*"]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
