package swipe

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
)

type swipeRequest struct {
	UserID    string `json:"userId"`
	TargetID  string `json:"targetId"`
	Direction string `json:"direction"`
}

// handlePostSwipe serves POST /api/swipes.
func (s *Service) handlePostSwipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Fail(c, svcErr.ErrMissingFields)
		return
	}

	res, err := s.RecordSwipe(c.Request.Context(), req.UserID, req.TargetID, req.Direction)
	if err != nil {
		svcErr.Fail(c, err)
		return
	}

	resp := gin.H{"ok": true, "isMatch": res.Match != nil}
	if res.Match != nil {
		resp["match"] = matchView(*res.Match)
	} else {
		resp["match"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetMatches serves GET /api/matches?userId=.
func (s *Service) handleGetMatches(c *gin.Context) {
	entries, err := s.ListMatches(c.Request.Context(), c.Query("userId"))
	if err != nil {
		svcErr.Fail(c, err)
		return
	}

	matches := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, gin.H{
			"id":        e.Match.ID,
			"createdAt": e.Match.CreatedAt,
			"user":      e.Other,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "matches": matches})
}

func matchView(m db.Match) gin.H {
	return gin.H{
		"id":        m.ID,
		"users":     []string{m.UserLow, m.UserHigh},
		"createdAt": m.CreatedAt,
	}
}
