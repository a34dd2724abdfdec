package profile

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/matchaapp/matcha-server/internal/errors"
)

// handleGuestSignup serves POST /api/auth/guest.
func (s *Service) handleGuestSignup(c *gin.Context) {
	var in GuestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		svcErr.Fail(c, svcErr.ErrNameRequired)
		return
	}

	user, token, err := s.CreateGuest(c.Request.Context(), in)
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user, "token": token})
}

// handleGetUser serves GET /api/users/:userId.
func (s *Service) handleGetUser(c *gin.Context) {
	user, err := s.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

type subscribeRequest struct {
	UserID       string          `json:"userId"`
	Subscription json.RawMessage `json:"subscription"`
}

// handleSubscribe serves POST /api/push/subscribe.
func (s *Service) handleSubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Fail(c, svcErr.ErrInvalidPayload)
		return
	}

	if err := s.Subscribe(c.Request.Context(), req.UserID, req.Subscription); err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type registerDeviceRequest struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// handleRegisterDevice serves POST /api/device/register.
func (s *Service) handleRegisterDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Fail(c, svcErr.ErrInvalidPayload)
		return
	}

	if err := s.RegisterDevice(c.Request.Context(), req.UserID, req.Token, req.Platform); err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
