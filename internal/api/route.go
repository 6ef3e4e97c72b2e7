package api

import (
	"Procura/internal/api/middleware"
	"Procura/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		companyGroup := apiGroup.Group("/companies")
		{
			companyGroup.GET("/search", group.CompanyHandler.Search)
			companyGroup.GET("/:company_id/simple", group.CompanyHandler.GetSimpleInfo)
		}

		chatGroup := apiGroup.Group("/chat")
		{
			// WS 自带 token 鉴权
			chatGroup.GET("/ws", group.WsHandler.Connect)

			authGroup := chatGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/conversations", group.ChatHandler.GetConversationList)
				authGroup.POST("/conversations/resolve", group.ChatHandler.ResolveConversation)
				authGroup.GET("/conversations/:conversation_id/messages", group.ChatHandler.GetMessages)
				authGroup.GET("/requests/:request_id/quotes", group.ChatHandler.GetRequestQuotes)
				authGroup.POST("/messages", group.ChatHandler.SendMessage)
				authGroup.POST("/messages/read", group.ChatHandler.MarkAsRead)
				authGroup.GET("/unread", group.ChatHandler.GetUnreadSummary)
			}
		}
	}

	return r
}
