package http

import (
	"github.com/gin-gonic/gin"

	appsvc "mcp-chat/internal/app"
	"mcp-chat/internal/bootstrap"
	"mcp-chat/internal/repository"
	"mcp-chat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	conversationRepo := repository.NewConversationRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)

	factory := appsvc.NewModelFactory(app.Config.Provider)
	chatService := appsvc.NewChatService(messageRepo, app.Cache, app.TurnPublisher, app.Logger)
	conversationService := appsvc.NewConversationService(conversationRepo, messageRepo, app.Cache, app.Logger)

	chatHandler := handler.NewChatHandler(factory, chatService, app.Logger)
	conversationHandler := handler.NewConversationHandler(conversationService)

	v1 := router.Group("/api/v1")
	v1.POST("/chat", chatHandler.Chat)

	conversations := v1.Group("/conversations")
	conversations.POST("", conversationHandler.Create)
	conversations.GET("", conversationHandler.List)
	conversations.GET("/:id", conversationHandler.Get)
	conversations.GET("/:id/messages", conversationHandler.GetMessages)

	return router
}
