package middleware

// identity.go holds the auth context shared by middleware and handlers.
// JWTAuth stores a model.Principal under principalKey; everything else reads
// it through PrincipalFrom.

import (
	"github.com/labstack/echo/v4"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

const principalKey = "principal"

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

// WithPrincipal stores p on the context.  Tests use it to skip token
// handling.
func WithPrincipal(c echo.Context, p model.Principal) {
	c.Set(principalKey, p)
}

// currentUserID identifies the caller for rate limit keys, "anon" for
// public requests.
func currentUserID(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok && p.Subject != "" {
		return p.Subject
	}
	return "anon"
}
