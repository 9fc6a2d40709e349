package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/accounts"
	"supportdesk/internal/models"
)

// UserIDKey holds the authenticated user's id in the gin context.
const UserIDKey = "user_id"

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// BasicAuthMiddleware authenticates every request with HTTP Basic
// credentials, where the username is the account email. Only verified users
// pass.
func BasicAuthMiddleware(auth Authenticator, realm string, log *slog.Logger) gin.HandlerFunc {
	challenge := `Basic realm="` + realm + `"`

	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c, challenge)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, accounts.ErrInvalidCredentials) {
				unauthorized(c, challenge)
				return
			}
			log.ErrorContext(c.Request.Context(), "basic auth lookup failed", "error", err, "request_id", RequestIDFromContext(c))
			c.String(http.StatusInternalServerError, "Error authenticating request. Please try again.")
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, challenge string) {
	c.Header("WWW-Authenticate", challenge)
	c.String(http.StatusUnauthorized, "Unauthorized.")
	c.Abort()
}

// UserIDFromContext returns the id set by BasicAuthMiddleware.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}
