package api

import (
	"errors"
	"net/http"

	"techpal/backend/internal/llm"
	"techpal/backend/internal/models"
	"techpal/backend/internal/service"
	apperrors "techpal/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatController handles the chat endpoint
type ChatController struct {
	chatService *service.ChatService
}

// NewChatController creates a new chat controller
func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// RegisterRoutes registers the routes for the chat controller
func (c *ChatController) RegisterRoutes(router *gin.Engine) {
	router.POST("/chat", c.Chat)
}

// Chat handles POST /chat
func (c *ChatController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "message and session_id are required"))
		return
	}

	resp, err := c.chatService.Chat(ctx.Request.Context(), req)
	if err != nil {
		ctx.Error(mapChatError(err))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// mapChatError converts service-level failures into HTTP errors,
// choosing a kind-specific user-facing message for provider failures
func mapChatError(err error) *apperrors.AppError {
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Kind {
		case llm.KindTimeout:
			return apperrors.NewGatewayTimeoutError("PROVIDER_TIMEOUT",
				"The assistant took too long to answer. Please try again.")
		case llm.KindAuth:
			return apperrors.NewBadGatewayError("PROVIDER_AUTH",
				"The assistant is not available right now.")
		case llm.KindRateLimit:
			return apperrors.NewBadGatewayError("PROVIDER_RATE_LIMITED",
				"The assistant is very busy right now. Please try again in a moment.")
		case llm.KindMalformed:
			return apperrors.NewBadGatewayError("PROVIDER_MALFORMED",
				"The assistant gave an unreadable answer. Please try again.")
		default:
			return apperrors.NewBadGatewayError("PROVIDER_ERROR",
				"The assistant could not answer. Please try again.")
		}
	}

	if errors.Is(err, llm.ErrNoTurns) || errors.Is(err, llm.ErrPromptTooLong) {
		return apperrors.NewBadRequestError("PROMPT_TOO_LARGE",
			"The conversation is too large to send. Start a new conversation.")
	}

	return apperrors.FromError(err)
}
