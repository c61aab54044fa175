package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/constants"
	apierrors "github.com/internhub/intern-management-api/internal/errors"
	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
)

const bearerPrefix = "Bearer "

// Authenticator resolves accounts from access tokens and session ids.
type Authenticator interface {
	Authenticate(accessToken string) (*models.User, error)
	GetUser(id uint64) (*models.User, error)
}

// RequireAuth resolves the principal from a bearer access token, falling back
// to the session. The account is reloaded on every request.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, bearerPrefix) {
				apierrors.InvalidCredentials(c, "Authorization header must use the Bearer scheme")
				c.Abort()
				return
			}

			user, err := auth.Authenticate(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				apierrors.InvalidCredentials(c, "Given token not valid for any token type")
				c.Abort()
				return
			}
			setPrincipal(c, user)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := auth.GetUser(userID)
		if err != nil {
			logging.Logger.WithError(err).WithField("user_id", userID).Warn("session refers to unknown account")
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		setPrincipal(c, user)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, user *models.User) {
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyPrincipal, policy.PrincipalFromUser(*user))
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
