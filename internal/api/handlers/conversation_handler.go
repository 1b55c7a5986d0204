package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelia/agentdesk/internal/services"
	"github.com/atelia/agentdesk/internal/utils"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type CreateConversationRequest struct {
	AgentSlug string `json:"agent_slug" binding:"required"`
	Title     string `json:"title"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Create", "invalid request body", err))
		return
	}

	c.Set("agent_slug", req.AgentSlug)

	conv, err := h.svc.Create(c.Request.Context(), userID, req.AgentSlug, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	includeArchived := c.Query("archived") == "true"

	rows, err := h.svc.ListByUser(c.Request.Context(), userID, includeArchived)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": rows})
}

func (h *ConversationHandler) Archive(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID := c.Param("conversation_id")
	c.Set("conversation_id", conversationID)

	if err := h.svc.Archive(c.Request.Context(), userID, conversationID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": true})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID := c.Param("conversation_id")
	c.Set("conversation_id", conversationID)

	rows, err := h.svc.Messages(c.Request.Context(), userID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"messages":        rows,
	})
}
