package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailInUse         = "Email already in use"
	msgNotAuthenticated   = "Not authenticated"
	msgInternal           = "Internal server error"
)

type response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// writeError maps service errors to status codes. Only the 5xx branch logs,
// and it never echoes the cause to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, response{Message: err.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, response{Message: msgNotAuthenticated})
	case errors.Is(err, common.ErrAlreadyExists):
		c.JSON(http.StatusConflict, response{Message: msgEmailInUse})
	default:
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, response{Message: msgInternal})
	}
}

func (s *Server) abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response{Message: msgNotAuthenticated})
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, response{Message: err.Error()})
}
