package user

import "context"

// Repository is the users table.
type Repository interface {
	// GetByUID returns ErrUserNotFound when no profile exists.
	GetByUID(ctx context.Context, uid string) (*Profile, error)

	// Upsert creates the profile as a reader or updates username, email,
	// preferences and avatar of an existing one. Role is left untouched.
	// It reports whether the row was created.
	Upsert(ctx context.Context, profile *Profile) (bool, error)

	// Update writes username, preferences and avatar.
	Update(ctx context.Context, profile *Profile) error

	// UpdateRole returns ErrUserNotFound when no profile exists.
	UpdateRole(ctx context.Context, uid, role string) (*Profile, error)
}
