package di

import (
	"fmt"

	"techpal/backend/internal/llm"
	"techpal/backend/internal/repository"
	"techpal/backend/internal/safety"
	"techpal/backend/internal/service"
	"techpal/backend/pkg/config"
	"techpal/backend/pkg/logger"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB                  *gorm.DB
	Config              *config.Config
	Logger              *logger.Logger
	LLMClient           llm.Client
	SessionRepo         repository.SessionRepository
	ConversationRepo    repository.ConversationRepository
	MessageRepo         repository.MessageRepository
	ChatService         *service.ChatService
	ConversationService *service.ConversationService
}

// New creates a new dependency injection container. The LLM client is
// selected once here from configuration; there is no per-request
// provider switching.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	// Initialize repositories
	sessionRepo := repository.NewGormSessionRepository(db)
	conversationRepo := repository.NewGormConversationRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// Initialize the provider client
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	// Initialize the safety filter
	filter := safety.NewDefaultFilter()

	// Initialize services
	chatService := service.NewChatService(
		sessionRepo,
		conversationRepo,
		messageRepo,
		client,
		filter,
		service.ChatServiceConfig{
			HistoryWindow:    cfg.Chat.HistoryWindow,
			MaxMessageLength: cfg.Chat.MaxMessageLength,
			CallTimeout:      cfg.LLM.Timeout,
		},
		log,
	)
	conversationService := service.NewConversationService(sessionRepo, conversationRepo, messageRepo)

	return &Container{
		DB:                  db,
		Config:              cfg,
		Logger:              log,
		LLMClient:           client,
		SessionRepo:         sessionRepo,
		ConversationRepo:    conversationRepo,
		MessageRepo:         messageRepo,
		ChatService:         chatService,
		ConversationService: conversationService,
	}, nil
}
