package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/user"
	"bookreview-backend/internal/shared"
)

type userService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) user.Service {
	return &userService{repo: repo}
}

func (s *userService) LookupPrincipal(ctx context.Context, uid string) (shared.Principal, error) {
	profile, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return shared.Principal{}, shared.ErrPrincipalNotFound
		}
		return shared.Principal{}, err
	}
	return profile.Principal(), nil
}

func (s *userService) GetProfile(ctx context.Context, uid string) (*user.Profile, error) {
	return s.repo.GetByUID(ctx, uid)
}

// UpsertProfile registers or refreshes the caller's profile. New profiles
// always start as readers.
func (s *userService) UpsertProfile(ctx context.Context, uid, email string, req user.UpsertProfileRequest) (*user.Profile, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", user.ErrValidation, err)
	}

	profile := &user.Profile{
		UID:         uid,
		Username:    strings.TrimSpace(req.Username),
		Email:       email,
		Preferences: user.NormalizePreferences(req.Preferences),
		AvatarURL:   req.AvatarURL,
	}

	created, err := s.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Info().Str("uid", uid).Str("username", profile.Username).Msg("user profile created")
	}

	return profile, created, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, req user.UpdateProfileRequest) (*user.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrValidation, err)
	}

	profile, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(profile)
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *userService) UpdateRole(ctx context.Context, uid string, req user.UpdateRoleRequest) (*user.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrValidation, err)
	}

	profile, err := s.repo.UpdateRole(ctx, uid, req.Role)
	if err != nil {
		return nil, err
	}

	log.Info().Str("uid", uid).Str("role", req.Role).Msg("user role changed")
	return profile, nil
}
