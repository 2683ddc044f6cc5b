package service

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview-backend/internal/domains/user"
	"bookreview-backend/internal/shared"
)

type fakeRepo struct {
	profiles map[string]user.Profile
	err      error
}

func newFakeRepo(profiles ...user.Profile) *fakeRepo {
	r := &fakeRepo{profiles: map[string]user.Profile{}}
	for _, p := range profiles {
		r.profiles[p.UID] = p
	}
	return r
}

func (r *fakeRepo) GetByUID(ctx context.Context, uid string) (*user.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[uid]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &p, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, profile *user.Profile) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	existing, ok := r.profiles[profile.UID]
	now := time.Now().UTC()
	if ok {
		profile.Role = existing.Role
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.Role = shared.RoleReader
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.profiles[profile.UID] = *profile
	return !ok, nil
}

func (r *fakeRepo) Update(ctx context.Context, profile *user.Profile) error {
	if _, ok := r.profiles[profile.UID]; !ok {
		return user.ErrUserNotFound
	}
	r.profiles[profile.UID] = *profile
	return nil
}

func (r *fakeRepo) UpdateRole(ctx context.Context, uid, role string) (*user.Profile, error) {
	p, ok := r.profiles[uid]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	p.Role = role
	r.profiles[uid] = p
	return &p, nil
}

func strPtr(s string) *string { return &s }

func TestLookupPrincipal(t *testing.T) {
	avatar := "https://img.example.com/a.png"
	repo := newFakeRepo(user.Profile{UID: "u1", Username: "alice", Email: "a@example.com", Role: shared.RoleAdmin, AvatarURL: &avatar})
	svc := NewUserService(repo)

	p, err := svc.LookupPrincipal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.Principal{UserID: "u1", Email: "a@example.com", Username: "alice", Role: shared.RoleAdmin, AvatarURL: &avatar}, p)

	_, err = svc.LookupPrincipal(context.Background(), "ghost")
	assert.ErrorIs(t, err, shared.ErrPrincipalNotFound)

	repo.err = errors.New("db down")
	_, err = svc.LookupPrincipal(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrPrincipalNotFound)
}

func TestUpsertProfile_CreatesReader(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo)

	p, created, err := svc.UpsertProfile(context.Background(), "u1", "a@example.com", user.UpsertProfileRequest{
		Username:    "  alice ",
		Preferences: []string{"fantasy", " ", "sci-fi"},
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, shared.RoleReader, p.Role)
	assert.Equal(t, []string{"fantasy", "sci-fi"}, p.Preferences)
}

func TestUpsertProfile_KeepsExistingRole(t *testing.T) {
	repo := newFakeRepo(user.Profile{UID: "a1", Username: "root", Email: "old@example.com", Role: shared.RoleAdmin})
	svc := NewUserService(repo)

	p, created, err := svc.UpsertProfile(context.Background(), "a1", "new@example.com", user.UpsertProfileRequest{Username: "root"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, shared.RoleAdmin, p.Role)
	assert.Equal(t, "new@example.com", p.Email)
}

func TestUpsertProfile_Validation(t *testing.T) {
	svc := NewUserService(newFakeRepo())

	_, _, err := svc.UpsertProfile(context.Background(), "u1", "a@example.com", user.UpsertProfileRequest{
		Username:  "a",
		AvatarURL: strPtr("not a url"),
	})

	require.ErrorIs(t, err, user.ErrValidation)
	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "username")
	assert.Contains(t, fieldErrs, "avatar_url")
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeRepo(user.Profile{UID: "u1", Username: "alice", Role: shared.RoleReader, Preferences: []string{"fantasy"}})
	svc := NewUserService(repo)

	prefs := []string{"horror"}
	p, err := svc.UpdateProfile(context.Background(), "u1", user.UpdateProfileRequest{Preferences: &prefs})

	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, []string{"horror"}, repo.profiles["u1"].Preferences)

	_, err = svc.UpdateProfile(context.Background(), "ghost", user.UpdateProfileRequest{Username: strPtr("ghost")})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdateRole(t *testing.T) {
	repo := newFakeRepo(user.Profile{UID: "u1", Username: "alice", Role: shared.RoleReader})
	svc := NewUserService(repo)

	p, err := svc.UpdateRole(context.Background(), "u1", user.UpdateRoleRequest{Role: shared.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, p.Role)

	_, err = svc.UpdateRole(context.Background(), "u1", user.UpdateRoleRequest{Role: "superuser"})
	assert.ErrorIs(t, err, user.ErrValidation)

	_, err = svc.UpdateRole(context.Background(), "ghost", user.UpdateRoleRequest{Role: shared.RoleReader})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
