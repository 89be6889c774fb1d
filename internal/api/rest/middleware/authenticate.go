package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/cookies"
	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Authenticate resolves the caller's identity from the access token and
// aborts with 401 when none can be established. The response does not
// say whether the token was missing, malformed or expired.
type Authenticate struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewAuthenticate(manager model.TokenManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{manager: manager, logger: logger}
}

func (m *Authenticate) Handle(c *gin.Context) {
	token := cookies.ReadAccess(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}

	id, err := m.manager.ParseAccessToken(token)
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected", "error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}

	identity.Set(c, id)
	c.Next()
}

// RequireRole gates a route group on the account role carried in the
// access token. Unknown or insufficient roles are denied; the response
// never lists the roles that would have been accepted.
func RequireRole(want model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.From(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}
		if !id.Role.AtLeast(want) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "forbidden",
			})
			return
		}
		c.Next()
	}
}
