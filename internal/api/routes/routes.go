package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/atelia/agentdesk/internal/api/handlers"
	"github.com/atelia/agentdesk/internal/api/middleware"
)

type Deps struct {
	Chat         *handlers.ChatHandler
	Conversation *handlers.ConversationHandler
	Agent        *handlers.AgentHandler
	Admin        *handlers.AdminHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/chat", d.Chat.Turn)

	auth.POST("/conversations", d.Conversation.Create)
	auth.GET("/conversations", d.Conversation.List)
	auth.POST("/conversations/:conversation_id/archive", d.Conversation.Archive)
	auth.GET("/conversations/:conversation_id/messages", d.Conversation.Messages)

	auth.GET("/agents", d.Agent.List)
	auth.GET("/agents/:slug/config", d.Agent.GetConfig)
	auth.PUT("/agents/:slug/config", d.Agent.PutConfig)
	auth.POST("/agents/:slug/sources", d.Agent.UploadSource)

	// Admin console
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/agents", d.Admin.CreateAgent)
	admin.PUT("/agents/:slug", d.Admin.UpdateAgent)
	admin.DELETE("/agents/:slug", d.Admin.DeleteAgent)
	admin.GET("/settings/:key", d.Admin.GetSetting)
	admin.PUT("/settings/:key", d.Admin.PutSetting)
}
