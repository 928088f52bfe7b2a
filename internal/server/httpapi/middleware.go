package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// requireSession resolves the access_token cookie to a user id. Requests
// without a live session are rejected with 401.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(common.AccessTokenCookieName)
		if err != nil || raw == "" {
			s.abortUnauthorized(c)
			return
		}

		token := strings.TrimPrefix(raw, common.BearerPrefix)

		userID, err := s.sessions.Validate(c.Request.Context(), token)
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
