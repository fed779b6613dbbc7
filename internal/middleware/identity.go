package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/auth"
)

const identityKey = "identity"

// Identity returns the verified identity stored by IdentityJWT, or nil for
// anonymous requests.
func Identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}

// subject identifies the caller for rate limit keys and logs; anonymous
// requests share "anon".
func subject(c echo.Context) string {
	if id := Identity(c); id != nil && id.Subject != "" {
		return id.Subject
	}
	return "anon"
}
