package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/app"
)

// Registrar ties the chat service into the HTTP server.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the chat service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Register mounts the chat routes on the API router.
func (r *Registrar) Register(api gin.IRouter) {
	api.GET("/chats/:chatId/messages", r.svc.handleListMessages)
	api.POST("/chats/:chatId/messages", r.svc.handlePostMessage)
}
