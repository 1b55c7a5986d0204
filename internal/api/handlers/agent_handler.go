package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/services"
	"github.com/atelia/agentdesk/internal/utils"
)

const maxSourceSize = 10 << 20

type AgentHandler struct {
	agents  services.AgentService
	configs services.AgentConfigService
	sources services.SourceService
}

func NewAgentHandler(agents services.AgentService, configs services.AgentConfigService, sources services.SourceService) *AgentHandler {
	return &AgentHandler{agents: agents, configs: configs, sources: sources}
}

func (h *AgentHandler) List(c *gin.Context) {
	rows, err := h.agents.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": rows})
}

func (h *AgentHandler) GetConfig(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cfg, err := h.configs.Get(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type UpsertConfigRequest struct {
	SystemPrompt string          `json:"system_prompt"`
	Sources      []models.Source `json:"sources"`
	Workflows    []string        `json:"workflows"`
}

func (h *AgentHandler) PutConfig(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AgentHandler.PutConfig", "invalid request body", err))
		return
	}

	cfg, err := h.configs.Upsert(c.Request.Context(), userID, c.Param("slug"), req.SystemPrompt, req.Sources, req.Workflows)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UploadSource stores a source document and returns the entry to place
// in the config's source list. Accepted families mirror what the turn
// pipeline can extract.
func (h *AgentHandler) UploadSource(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	const op = "AgentHandler.UploadSource"

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > maxSourceSize {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil))
		return
	}

	contentType := sourceContentType(fh.Filename)
	if contentType == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unsupported file type (pdf, txt, md, csv, json)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff and re-compose the stream so PDFs renamed to .txt get
	// their real content type
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	if http.DetectContentType(head) == "application/pdf" {
		contentType = "application/pdf"
	}
	r := io.MultiReader(bytes.NewReader(head), file)

	src, err := h.sources.Upload(c.Request.Context(), userID, fh.Filename, contentType, r)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, src)
}

func sourceContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	if ct := mime.TypeByExtension(ext); strings.HasPrefix(ct, "text/") {
		return ct
	}
	return ""
}
