package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/app"
)

// Registrar ties the profile service into the HTTP server.
type Registrar struct {
	svc            *Service
	vapidPublicKey string
}

// NewRegistrar creates a new Registrar for the profile service. The VAPID
// public key is served to browsers so they can subscribe.
func NewRegistrar(appCtx *app.AppContext, vapidPublicKey string) *Registrar {
	return &Registrar{svc: NewService(appCtx), vapidPublicKey: vapidPublicKey}
}

// Register mounts the profile routes on the API router.
func (r *Registrar) Register(api gin.IRouter) {
	api.POST("/auth/guest", r.svc.handleGuestSignup)
	api.GET("/users/:userId", r.svc.handleGetUser)
	api.POST("/push/subscribe", r.svc.handleSubscribe)
	api.POST("/device/register", r.svc.handleRegisterDevice)
	api.GET("/push/public-key", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "publicKey": r.vapidPublicKey})
	})
}
