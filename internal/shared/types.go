package shared

import "errors"

// Roles stored on a user profile.
const (
	RoleReader = "reader"
	RoleAdmin  = "admin"
)

// ErrPrincipalNotFound means the token is valid but no profile exists for it.
var ErrPrincipalNotFound = errors.New("principal profile not found")

// Principal is the authenticated caller, built from the verified token and
// the caller's own profile row. Kept here so domains can share it without
// importing the user domain.
type Principal struct {
	UserID    string
	Email     string
	Username  string
	Role      string
	AvatarURL *string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
