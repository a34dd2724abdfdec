package explore

import (
	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/app"
)

// Registrar ties the explore service into the HTTP server.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the explore service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Register mounts the explore routes on the API router.
func (r *Registrar) Register(api gin.IRouter) {
	api.GET("/profiles/stack", r.svc.handleStack)
	api.GET("/likes/liked-you", r.svc.handleLikedYou)
	api.GET("/likes/count", r.svc.handleLikeCount)
}
