package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parentsmadrasa/sessionkit"
	"github.com/parentsmadrasa/sessionkit/profile"
)

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type restoreResponse struct {
	Restored bool             `json:"restored"`
	State    sessionkit.State `json:"state"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.engine.Ping(c.Request.Context()); err != nil {
		s.log.Error().Err(err).Msg("storage ping failed")
		writeError(c, http.StatusServiceUnavailable, "storage_unavailable", "session storage unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) signIn(c *gin.Context) {
	var rec sessionkit.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	holder, screen := s.screenFor(c)
	if err := holder.SignIn(c.Request.Context(), rec); err != nil {
		if errors.Is(err, sessionkit.ErrInvalidRecord) {
			writeError(c, http.StatusUnprocessableEntity, "invalid_record", sessionkit.UserMessage(err))
			return
		}
		writeError(c, http.StatusServiceUnavailable, "persist_failed", sessionkit.UserMessage(err))
		return
	}
	screen.Reset()
	c.JSON(http.StatusCreated, holder.State())
}

func (s *Server) getSession(c *gin.Context) {
	holder, _ := s.screenFor(c)
	c.JSON(http.StatusOK, holder.State())
}

func (s *Server) restoreSession(c *gin.Context) {
	holder, screen := s.screenFor(c)
	restored, err := holder.Restore(c.Request.Context())
	if err != nil && errors.Is(err, sessionkit.ErrStorage) {
		writeError(c, http.StatusServiceUnavailable, "storage_unavailable", sessionkit.UserMessage(err))
		return
	}
	if restored {
		screen.Reset()
	}
	c.JSON(http.StatusOK, restoreResponse{Restored: restored, State: holder.State()})
}

func (s *Server) getProfile(c *gin.Context) {
	_, screen := s.screenFor(c)
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) requestLogout(c *gin.Context) {
	_, screen := s.screenFor(c)
	s.respondView(c, screen, screen.RequestLogout())
}

func (s *Server) cancelLogout(c *gin.Context) {
	_, screen := s.screenFor(c)
	s.respondView(c, screen, screen.Cancel())
}

func (s *Server) confirmLogout(c *gin.Context) {
	_, screen := s.screenFor(c)
	s.respondView(c, screen, screen.Confirm(c.Request.Context()))
}

func (s *Server) retryLogout(c *gin.Context) {
	_, screen := s.screenFor(c)
	s.respondView(c, screen, screen.Retry(c.Request.Context()))
}

func (s *Server) forceLogout(c *gin.Context) {
	_, screen := s.screenFor(c)
	s.respondView(c, screen, screen.ForceLogout(c.Request.Context()))
}

// respondView renders the screen. Logout failures are part of the view, so
// only rejected transitions change the status code.
func (s *Server) respondView(c *gin.Context, screen *profile.Screen, err error) {
	if errors.Is(err, profile.ErrInvalidTransition) {
		writeError(c, http.StatusConflict, "invalid_transition", err.Error())
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("phase", screen.Phase().String()).Msg("profile action completed with error")
	}
	c.JSON(http.StatusOK, screen.View())
}
