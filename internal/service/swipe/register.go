package swipe

import (
	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/app"
)

// Registrar ties the swipe service into the HTTP server.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the swipe service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Register mounts the swipe routes on the API router.
func (r *Registrar) Register(api gin.IRouter) {
	api.POST("/swipes", r.svc.handlePostSwipe)
	api.GET("/matches", r.svc.handleGetMatches)
}
