package api

import (
	"net/http"

	"techpal/backend/internal/service"
	apperrors "techpal/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ConversationController handles conversation history endpoints
type ConversationController struct {
	conversationService *service.ConversationService
}

// NewConversationController creates a new conversation controller
func NewConversationController(conversationService *service.ConversationService) *ConversationController {
	return &ConversationController{conversationService: conversationService}
}

// RegisterRoutes registers the routes for the conversation controller
func (c *ConversationController) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/conversations")
	{
		group.GET("/:session_id", c.List)
		group.GET("/:session_id/:conversation_id", c.Get)
		group.DELETE("/:session_id/:conversation_id", c.Delete)
	}
}

// List handles GET /conversations/:session_id
func (c *ConversationController) List(ctx *gin.Context) {
	summaries, err := c.conversationService.List(ctx.Param("session_id"))
	if err != nil {
		ctx.Error(apperrors.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// Get handles GET /conversations/:session_id/:conversation_id
func (c *ConversationController) Get(ctx *gin.Context) {
	detail, err := c.conversationService.Get(ctx.Param("session_id"), ctx.Param("conversation_id"))
	if err != nil {
		ctx.Error(apperrors.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /conversations/:session_id/:conversation_id
func (c *ConversationController) Delete(ctx *gin.Context) {
	err := c.conversationService.Delete(ctx.Param("session_id"), ctx.Param("conversation_id"))
	if err != nil {
		ctx.Error(apperrors.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}
