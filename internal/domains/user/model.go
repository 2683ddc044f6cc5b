package user

import (
	"time"

	"bookreview-backend/internal/shared"
)

// Profile is the application-side record of an identity-provider user.
// Role is only ever changed by an admin.
type Profile struct {
	UID         string   `json:"uid"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Preferences []string `json:"preferences"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Profile) Principal() shared.Principal {
	return shared.Principal{
		UserID:    p.UID,
		Email:     p.Email,
		Username:  p.Username,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
	}
}

func IsValidRole(role string) bool {
	return role == shared.RoleReader || role == shared.RoleAdmin
}
