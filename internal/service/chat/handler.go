package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/matchaapp/matcha-server/internal/errors"
)

// handleListMessages serves GET /api/chats/:chatId/messages?userId=.
func (s *Service) handleListMessages(c *gin.Context) {
	messages, err := s.ListMessages(c.Request.Context(), c.Param("chatId"), c.Query("userId"))
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
}

type postMessageRequest struct {
	UserID string `json:"userId"`
	Body   string `json:"body"`
}

// handlePostMessage serves POST /api/chats/:chatId/messages.
func (s *Service) handlePostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Fail(c, svcErr.ErrInvalidPayload)
		return
	}

	msg, err := s.PostMessage(c.Request.Context(), c.Param("chatId"), req.UserID, req.Body)
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
}
