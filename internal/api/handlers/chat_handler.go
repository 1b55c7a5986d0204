package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelia/agentdesk/internal/services"
	"github.com/atelia/agentdesk/internal/utils"
)

type ChatHandler struct {
	svc services.TurnService
}

func NewChatHandler(svc services.TurnService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Fields are validated (and the first missing one named) inside the
// service, before any store or provider call.
type TurnRequest struct {
	AgentSlug      string `json:"agent_slug"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type TurnResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) Turn(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Turn", "invalid request body", err))
		return
	}

	// picked up by the request logger
	c.Set("agent_slug", req.AgentSlug)
	c.Set("conversation_id", req.ConversationID)

	reply, err := h.svc.Run(c.Request.Context(), userID, req.AgentSlug, req.ConversationID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TurnResponse{Reply: reply})
}
