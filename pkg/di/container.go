package di

import (
	"ai-finance-chat/backend/gateway"
	"ai-finance-chat/backend/internal/repository"
	"ai-finance-chat/backend/internal/service"
	"ai-finance-chat/backend/pkg/cache"
	"ai-finance-chat/backend/pkg/config"
	"ai-finance-chat/backend/pkg/jwt"
	"ai-finance-chat/backend/pkg/logger"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB                  *gorm.DB
	Config              *config.Config
	Logger              *logger.Logger
	JWTService          *jwt.Service
	Gateway             *gateway.Client
	ModelCache          *cache.Cache
	UserService         *service.UserService
	ChatService         *service.ChatService
	ConversationService *service.ConversationService
}

// New creates a new dependency injection container
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) *Container {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	gw := gateway.NewClient(gateway.Config{
		APIKey:             cfg.Gateway.APIKey,
		BaseURL:            cfg.Gateway.BaseURL,
		SiteURL:            cfg.Gateway.SiteURL,
		AppName:            cfg.Gateway.AppName,
		MinRequestInterval: cfg.Gateway.MinRequestInterval,
		Timeout:            cfg.Gateway.Timeout,
	}, log)

	var modelCache *cache.Cache
	if cfg.Cache.Enabled {
		modelCache = cache.New(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	conversationRepo := repository.NewGormConversationRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	chatService := service.NewChatService(
		conversationRepo,
		messageRepo,
		gw,
		modelCache,
		log,
		service.ChatServiceConfig{
			DefaultModel:  cfg.Gateway.DefaultModel,
			ContextWindow: cfg.Gateway.ContextWindow,
			CatalogTTL:    cfg.Cache.TTL,
		},
	)

	return &Container{
		DB:                  db,
		Config:              cfg,
		Logger:              log,
		JWTService:          jwtService,
		Gateway:             gw,
		ModelCache:          modelCache,
		UserService:         service.NewUserService(db, jwtService),
		ChatService:         chatService,
		ConversationService: service.NewConversationService(conversationRepo, messageRepo, log),
	}
}
