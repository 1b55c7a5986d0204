package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelia/agentdesk/internal/services"
	"github.com/atelia/agentdesk/internal/utils"
)

// AdminHandler backs the admin console: agent catalog CRUD and the
// global settings (base prompt among them).
type AdminHandler struct {
	agents   services.AgentService
	settings services.SettingsService
}

func NewAdminHandler(agents services.AgentService, settings services.SettingsService) *AdminHandler {
	return &AdminHandler{agents: agents, settings: settings}
}

type AgentRequest struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model"`
}

func (h *AdminHandler) CreateAgent(c *gin.Context) {
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.CreateAgent", "invalid request body", err))
		return
	}

	a, err := h.agents.Create(c.Request.Context(), req.Slug, req.Name, req.SystemPrompt, req.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AdminHandler) UpdateAgent(c *gin.Context) {
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.UpdateAgent", "invalid request body", err))
		return
	}

	a, err := h.agents.Update(c.Request.Context(), c.Param("slug"), req.Name, req.SystemPrompt, req.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AdminHandler) DeleteAgent(c *gin.Context) {
	if err := h.agents.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *AdminHandler) GetSetting(c *gin.Context) {
	row, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type SettingRequest struct {
	Value string `json:"value"`
}

func (h *AdminHandler) PutSetting(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.PutSetting", "invalid request body", err))
		return
	}

	row, err := h.settings.Upsert(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
