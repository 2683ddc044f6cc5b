package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookreview-backend/internal/domains/user"
	"bookreview-backend/internal/shared"
	"bookreview-backend/pkg/database"
)

const profileColumns = `uid, username, email, role, preferences, avatar_url, created_at, updated_at`

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) user.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByUID(ctx context.Context, uid string) (*user.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE uid = $1`

	profile, err := scanProfile(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return profile, nil
}

// Upsert uses xmax = 0 to tell an insert from a conflict update.
func (r *postgresRepository) Upsert(ctx context.Context, profile *user.Profile) (bool, error) {
	query := `
		INSERT INTO users (uid, username, email, role, preferences, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO UPDATE
		SET username = EXCLUDED.username,
		    email = EXCLUDED.email,
		    preferences = EXCLUDED.preferences,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = NOW()
		RETURNING role, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRow(ctx, query,
		profile.UID,
		profile.Username,
		profile.Email,
		shared.RoleReader,
		profile.Preferences,
		profile.AvatarURL,
	).Scan(&profile.Role, &profile.CreatedAt, &profile.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	return inserted, nil
}

func (r *postgresRepository) Update(ctx context.Context, profile *user.Profile) error {
	query := `
		UPDATE users
		SET username = $2,
		    preferences = $3,
		    avatar_url = $4,
		    updated_at = NOW()
		WHERE uid = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		profile.UID,
		profile.Username,
		profile.Preferences,
		profile.AvatarURL,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateRole(ctx context.Context, uid, role string) (*user.Profile, error) {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE uid = $1
		RETURNING ` + profileColumns

	profile, err := scanProfile(r.db.QueryRow(ctx, query, uid, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	p := &user.Profile{}
	err := row.Scan(
		&p.UID,
		&p.Username,
		&p.Email,
		&p.Role,
		&p.Preferences,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	return p, nil
}
