package user

import (
	"context"

	"bookreview-backend/internal/shared"
)

// Service is the profile use-case surface.
type Service interface {
	// LookupPrincipal returns shared.ErrPrincipalNotFound when uid has no profile.
	LookupPrincipal(ctx context.Context, uid string) (shared.Principal, error)

	GetProfile(ctx context.Context, uid string) (*Profile, error)
	UpsertProfile(ctx context.Context, uid, email string, req UpsertProfileRequest) (*Profile, bool, error)
	UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*Profile, error)
	UpdateRole(ctx context.Context, uid string, req UpdateRoleRequest) (*Profile, error)
}
