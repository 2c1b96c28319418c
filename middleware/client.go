package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parentsmadrasa/sessionkit"
	"github.com/rs/zerolog"
)

// ClientIDHeader carries the portal client identifier.
const ClientIDHeader = "X-Client-ID"

const holderKey = "sessionkit.holder"

// ErrMissingClientID is reported when a request has no client header.
var ErrMissingClientID = errors.New("missing client id header")

// HolderFromContext returns the holder stored by RequireClient.
func HolderFromContext(c *gin.Context) (*sessionkit.Holder, bool) {
	value, exists := c.Get(holderKey)
	if !exists {
		return nil, false
	}
	h, ok := value.(*sessionkit.Holder)
	return h, ok
}

// RequireClient rejects requests without a valid client id and attaches the
// client's holder otherwise.
func RequireClient(engine *sessionkit.Engine, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientIDHeader)
		if clientID == "" {
			abort(c, log, http.StatusBadRequest, ErrMissingClientID, "Missing "+ClientIDHeader+" header")
			return
		}

		holder, err := engine.Holder(clientID)
		if err != nil {
			if errors.Is(err, sessionkit.ErrEngineNotReady) {
				abort(c, log, http.StatusServiceUnavailable, err, "Session service unavailable")
				return
			}
			abort(c, log, http.StatusBadRequest, err, "Invalid client id")
			return
		}

		ctx := sessionkit.WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = sessionkit.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Set(holderKey, holder)

		c.Next()
	}
}

func abort(c *gin.Context, log zerolog.Logger, status int, err error, message string) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
