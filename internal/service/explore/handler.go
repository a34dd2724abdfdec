package explore

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/matchaapp/matcha-server/internal/errors"
)

// handleStack serves GET /api/profiles/stack?userId=&limit=.
func (s *Service) handleStack(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	profiles, err := s.Stack(c.Request.Context(), c.Query("userId"), limit)
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profiles": profiles})
}

// handleLikedYou serves GET /api/likes/liked-you?userId=&paginationToken=.
func (s *Service) handleLikedYou(c *gin.Context) {
	var token *string
	if t := c.Query("paginationToken"); t != "" {
		token = &t
	}

	swipes, nextToken, err := s.ListLikedYou(c.Request.Context(), c.Query("userId"), token)
	if err != nil {
		svcErr.Fail(c, err)
		return
	}

	likers := make([]gin.H, 0, len(swipes))
	for _, sw := range swipes {
		likers = append(likers, gin.H{
			"userId":  sw.ActorID,
			"likedAt": sw.UpdatedAt,
		})
	}
	resp := gin.H{"ok": true, "likers": likers}
	if nextToken != nil {
		resp["nextPaginationToken"] = *nextToken
	}
	c.JSON(http.StatusOK, resp)
}

// handleLikeCount serves GET /api/likes/count?userId=.
func (s *Service) handleLikeCount(c *gin.Context) {
	count, err := s.CountLikedYou(c.Request.Context(), c.Query("userId"))
	if err != nil {
		svcErr.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}
