package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// ChatController exposes the AI companion.
type ChatController struct {
	chat *services.ChatService
}

// NewChatController creates a new controller instance.
func NewChatController(db *gorm.DB, llm utils.ChatCompleter) *ChatController {
	return &ChatController{chat: services.NewChatService(db, llm)}
}

// Send posts a message to the companion and returns its reply. Crisis
// messages get the helpline response without calling the model.
func (c *ChatController) Send(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		ConversationID  uint    `json:"conversation_id"`
		Message         string  `json:"message" binding:"required"`
		DetectedEmotion *string `json:"detected_emotion"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}
	if len(req.Message) > 4000 {
		utils.Error(ctx, http.StatusBadRequest, 40081, "message too long")
		return
	}

	reply, err := c.chat.Respond(ctx.Request.Context(), userID, req.ConversationID, req.Message, req.DetectedEmotion)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "companion is unavailable right now")
		return
	}

	utils.Success(ctx, reply)
}

// Conversations lists the user's conversations, most recent first.
func (c *ChatController) Conversations(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	conversations, err := c.chat.Conversations(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load conversations")
		return
	}

	utils.Success(ctx, conversations)
}

// Messages returns the full history of one conversation.
func (c *ChatController) Messages(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	conversationID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid conversation id")
		return
	}

	messages, err := c.chat.Messages(userID, uint(conversationID))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to load messages")
		return
	}

	utils.Success(ctx, messages)
}
