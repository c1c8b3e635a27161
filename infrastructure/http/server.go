package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tutor-chat/auth"
)

// NewRouter assembles the gin engine: CORS, token auth on the API group,
// and the websocket endpoint for live delivery.
func NewRouter(handler *Handler, tokens auth.Tokens, connectionBufferSize int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/ws", AuthRequired(tokens), handler.Websocket(connectionBufferSize))

	api := router.Group("/api", AuthRequired(tokens))
	{
		api.GET("/conversations", handler.ListConversations)
		api.POST("/conversations", handler.CreateConversation)
		api.GET("/conversations/:id/messages", handler.GetMessages)
		api.POST("/conversations/:id/messages", handler.SendMessage)
		api.GET("/conversations/:id/messages/search", handler.SearchMessages)
		api.POST("/conversations/:id/read", handler.MarkConversationRead)
		api.POST("/messages/:id/read", handler.MarkMessageRead)
		api.GET("/unread-count", handler.UnreadCount)
		api.POST("/attachments", handler.UploadAttachment)
	}

	return router
}
