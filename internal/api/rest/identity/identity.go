// Package identity stores the authenticated caller on the request
// context so handlers behind the auth middleware can read it back.
package identity

import (
	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

const contextKey = "auth_identity"

// Set stores the caller's identity on the gin context.
func Set(c *gin.Context, id model.Identity) {
	c.Set(contextKey, id)
}

// From returns the caller's identity, if the request was authenticated.
func From(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}
