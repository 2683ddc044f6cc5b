package user

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"bookreview-backend/internal/shared"
)

const (
	MinUsernameLength = 2
	MaxUsernameLength = 50
	MaxPreferences    = 50
)

// UpsertProfileRequest is the body of PUT /users/me. Email comes from the
// token and role is never accepted from the caller.
type UpsertProfileRequest struct {
	Username    string   `json:"username"`
	Preferences []string `json:"preferences"`
	AvatarURL   *string  `json:"avatar_url"`
}

func (r UpsertProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required,
			validation.RuneLength(MinUsernameLength, MaxUsernameLength),
		),
		validation.Field(&r.Preferences, preferenceRules()...),
		validation.Field(&r.AvatarURL, validation.NilOrNotEmpty, is.URL),
	)
}

// UpdateProfileRequest is the body of PATCH /users/me.
type UpdateProfileRequest struct {
	Username    *string   `json:"username"`
	Preferences *[]string `json:"preferences"`
	AvatarURL   *string   `json:"avatar_url"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.NilOrNotEmpty,
			validation.RuneLength(MinUsernameLength, MaxUsernameLength),
		),
		validation.Field(&r.Preferences, validation.By(func(interface{}) error {
			if r.Preferences == nil {
				return nil
			}
			return validation.Validate(*r.Preferences, preferenceRules()...)
		})),
		validation.Field(&r.AvatarURL, validation.NilOrNotEmpty, is.URL),
	)
}

func (r UpdateProfileRequest) ApplyTo(p *Profile) {
	if r.Username != nil {
		p.Username = strings.TrimSpace(*r.Username)
	}
	if r.Preferences != nil {
		p.Preferences = NormalizePreferences(*r.Preferences)
	}
	if r.AvatarURL != nil {
		avatar := *r.AvatarURL
		p.AvatarURL = &avatar
	}
}

// UpdateRoleRequest is the body of PATCH /admin/users/:uid/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(shared.RoleReader, shared.RoleAdmin)),
	)
}

func preferenceRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(0, MaxPreferences),
		validation.Each(validation.Required, validation.RuneLength(1, 50)),
	}
}

// NormalizePreferences trims entries and drops blanks.
func NormalizePreferences(prefs []string) []string {
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
