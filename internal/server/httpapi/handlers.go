package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/game"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
	"github.com/gin-gonic/gin"
)

// credentialsRequest is the body of /register, /login and /delete.
type credentialsRequest struct {
	Email    string `json:"user" binding:"required"`
	Password string `json:"pass" binding:"required"`
}

type updateRequest struct {
	Type string  `json:"type" binding:"required"`
	ID   *string `json:"id"`
	Msg  any     `json:"msg"`
}

type healthResponse struct {
	OK       bool   `json:"ok"`
	DBStatus string `json:"db_status"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, response{OK: true})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{OK: true, DBStatus: s.health.DBStatus(c.Request.Context())})
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	if _, err := s.credentials.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response{OK: true, Message: "Successfully Registered"})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	ctx := c.Request.Context()

	userID, err := s.credentials.Verify(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, response{Message: msgInvalidCredentials})
			return
		}
		s.writeError(c, err)
		return
	}

	issued, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setAccessCookie(c, common.BearerPrefix+issued.Token, int(s.sessions.TTL().Seconds()))
	c.JSON(http.StatusOK, response{OK: true, Message: "Successfully Authorized"})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		s.writeError(c, err)
		return
	}

	s.setAccessCookie(c, "", -1)
	c.JSON(http.StatusOK, response{OK: true, Message: "Successfully logged out"})
}

func (s *Server) deleteAccount(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	if err := s.credentials.Delete(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, response{Message: msgInvalidCredentials})
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response{OK: true, Message: "Successfully Deleted"})
}

func (s *Server) saveState(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		validationError(c, err)
		return
	}

	state, err := game.DecodeSave(body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.games.SaveState(c.Request.Context(), currentUserID(c), state); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response{OK: true})
}

func (s *Server) updateState(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	ev := models.UpdateEvent{Type: req.Type, ID: req.ID, Msg: req.Msg}
	if err := s.games.UpdateState(c.Request.Context(), currentUserID(c), ev); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response{OK: true})
}

func (s *Server) syncState(c *gin.Context) {
	state, err := s.games.SyncState(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	body, err := game.Serialize(state)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// setAccessCookie writes the session cookie; maxAge < 0 deletes it.
func (s *Server) setAccessCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !s.opts.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}
