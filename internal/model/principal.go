package model

// Console roles accepted by the login endpoint.
const (
	RoleAdmin  = "ADMIN"
	RolePolice = "POLICE"
)

// Principal is the authenticated caller of a console endpoint.  It is
// derived from a verified access token and handed to handlers explicitly.
type Principal struct {
	Subject string
	Role    string
}

// Is reports whether the principal holds one of the given roles.
func (p Principal) Is(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
