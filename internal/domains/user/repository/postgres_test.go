package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview-backend/internal/domains/user"
	"bookreview-backend/internal/shared"
)

var profileCols = []string{"uid", "username", "email", "role", "preferences", "avatar_url", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (user.Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func TestGetByUID(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE uid = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("u1", "alice", "alice@example.com", shared.RoleAdmin, []string(nil), (*string)(nil), at, at))
	mock.ExpectQuery(`FROM users WHERE uid = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(profileCols))

	p, err := repo.GetByUID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, shared.RoleAdmin, p.Role)
	assert.Equal(t, []string{}, p.Preferences)

	_, err = repo.GetByUID(context.Background(), "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_NewProfileIsReader(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	p := &user.Profile{UID: "u1", Username: "alice", Email: "alice@example.com", Preferences: []string{"fantasy"}}

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(uid\) DO UPDATE`).
		WithArgs("u1", "alice", "alice@example.com", shared.RoleReader, []string{"fantasy"}, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"role", "created_at", "updated_at", "inserted"}).
			AddRow(shared.RoleReader, now, now, true))

	created, err := repo.Upsert(context.Background(), p)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, shared.RoleReader, p.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ExistingKeepsRole(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	p := &user.Profile{UID: "a1", Username: "root", Email: "root@example.com", Preferences: []string{}}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a1", "root", "root@example.com", shared.RoleReader, []string{}, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"role", "created_at", "updated_at", "inserted"}).
			AddRow(shared.RoleAdmin, now.Add(-time.Hour), now, false))

	created, err := repo.Upsert(context.Background(), p)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, shared.RoleAdmin, p.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE users").
		WithArgs("u1", "alice2", []string{}, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("UPDATE users").
		WithArgs("ghost", "x", []string{}, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	p := &user.Profile{UID: "u1", Username: "alice2", Preferences: []string{}}
	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, now, p.UpdatedAt)

	err := repo.Update(context.Background(), &user.Profile{UID: "ghost", Username: "x", Preferences: []string{}})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdateRole(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now().UTC()

	mock.ExpectQuery(`UPDATE users\s+SET role = \$2`).
		WithArgs("u1", shared.RoleAdmin).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("u1", "alice", "alice@example.com", shared.RoleAdmin, []string{}, (*string)(nil), at, at))
	mock.ExpectQuery(`UPDATE users\s+SET role = \$2`).
		WithArgs("ghost", shared.RoleAdmin).
		WillReturnError(errors.New("connection reset"))

	p, err := repo.UpdateRole(context.Background(), "u1", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, p.Role)

	_, err = repo.UpdateRole(context.Background(), "ghost", shared.RoleAdmin)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrUserNotFound)
}
