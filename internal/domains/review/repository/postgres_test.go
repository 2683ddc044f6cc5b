package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/pkg/database"
)

var reviewCols = []string{
	"id", "book_id", "user_id", "reviewer_name", "avatar_url",
	"rating", "review_text", "has_spoilers", "started_date", "finished_date",
	"created_at", "updated_at",
}

func newMockStore(t *testing.T) (Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func aggregateRows(avg float64, count int, version int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"rating_average", "review_count", "version"}).
		AddRow(avg, count, version)
}

func reviewRow(rows *pgxmock.Rows, r model.Review) *pgxmock.Rows {
	return rows.AddRow(
		r.ID, r.BookID, r.UserID, r.ReviewerName, r.AvatarURL,
		r.Rating, r.ReviewText, r.HasSpoilers, r.StartedDate, r.FinishedDate,
		r.CreatedAt, r.UpdatedAt,
	)
}

func sampleReview(bookID, userID string, rating int, createdAt time.Time) model.Review {
	return model.Review{
		ID:           uuid.New(),
		BookID:       bookID,
		UserID:       userID,
		ReviewerName: "ana",
		AvatarURL:    (*string)(nil),
		Rating:       rating,
		ReviewText:   "A fine book",
		StartedDate:  (*time.Time)(nil),
		FinishedDate: (*time.Time)(nil),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestRunInTx_CreateCommitsBothWrites(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery("SELECT rating_average, review_count, version FROM books").
		WithArgs("b1").
		WillReturnRows(aggregateRows(6.0, 2, int64(3)))
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), "b1", "u1", "ana", pgxmock.AnyArg(),
			9, "Great pacing", false, pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE books").
		WithArgs("b1", 7.0, 3, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := store.RunInTx(ctx, func(tx Tx) error {
		agg, err := tx.GetBookAggregate(ctx, "b1")
		if err != nil {
			return err
		}
		review := &model.Review{
			ID: uuid.New(), BookID: "b1", UserID: "u1", ReviewerName: "ana",
			Rating: 9, ReviewText: "Great pacing", CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.InsertReview(ctx, review); err != nil {
			return err
		}
		return tx.UpdateBookAggregate(ctx, "b1", agg.WithAdded(9), agg.Version)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_VersionMismatchIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec("UPDATE books").
		WithArgs("b1", 5.0, 1, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx Tx) error {
		return tx.UpdateBookAggregate(ctx, "b1", model.BookAggregate{RatingAverage: 5, ReviewCount: 1}, 7)
	})

	assert.ErrorIs(t, err, database.ErrTxConflict)
	assert.True(t, database.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_SerializationFailureOnCommitIsRetryable(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery("SELECT rating_average, review_count, version FROM books").
		WithArgs("b1").
		WillReturnRows(aggregateRows(0, 0, int64(1)))
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx Tx) error {
		_, err := tx.GetBookAggregate(ctx, "b1")
		return err
	})

	require.Error(t, err)
	assert.True(t, database.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookAggregate_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery("SELECT rating_average, review_count, version FROM books").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"rating_average", "review_count", "version"}))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx Tx) error {
		_, err := tx.GetBookAggregate(ctx, "missing")
		return err
	})

	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReview(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	want := sampleReview("b1", "u1", 7, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(`FROM reviews\s+WHERE book_id = \$1 AND id = \$2`).
		WithArgs("b1", want.ID).
		WillReturnRows(reviewRow(pgxmock.NewRows(reviewCols), want))
	mock.ExpectQuery(`FROM reviews\s+WHERE book_id = \$1 AND id = \$2`).
		WithArgs("b1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(reviewCols))
	mock.ExpectCommit()

	var got *model.Review
	var missingErr error
	err := store.RunInTx(ctx, func(tx Tx) error {
		var err error
		got, err = tx.GetReview(ctx, "b1", want.ID)
		if err != nil {
			return err
		}
		_, missingErr = tx.GetReview(ctx, "b1", uuid.New())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.ErrorIs(t, missingErr, model.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReview_MapsConstraintViolations(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"missing book", "23503", model.ErrBookNotFound},
		{"duplicate id", "23505", model.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			ctx := context.Background()
			review := sampleReview("b1", "u1", 5, time.Now())

			mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
			mock.ExpectExec("INSERT INTO reviews").
				WithArgs(review.ID, "b1", "u1", "ana", pgxmock.AnyArg(),
					5, "A fine book", false, pgxmock.AnyArg(), pgxmock.AnyArg(),
					pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: tt.code})
			mock.ExpectRollback()

			err := store.RunInTx(ctx, func(tx Tx) error {
				return tx.InsertReview(ctx, &review)
			})

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateAndDeleteReview_ZeroRowsIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	review := sampleReview("b1", "u1", 5, time.Now())

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec("UPDATE reviews").
		WithArgs("b1", review.ID, 5, "A fine book", false,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx Tx) error {
		return tx.UpdateReview(ctx, &review)
	})
	assert.ErrorIs(t, err, database.ErrTxConflict)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec("DELETE FROM reviews").
		WithArgs("b1", review.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err = store.RunInTx(ctx, func(tx Tx) error {
		return tx.DeleteReview(ctx, "b1", review.ID)
	})
	assert.ErrorIs(t, err, database.ErrTxConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByBook_NewestFirst(t *testing.T) {
	store, mock := newMockStore(t)
	older := sampleReview("b1", "u1", 4, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleReview("b1", "u2", 9, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	rows := pgxmock.NewRows(reviewCols)
	reviewRow(rows, newer)
	reviewRow(rows, older)

	mock.ExpectQuery(`WHERE book_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("b1").
		WillReturnRows(rows)

	got, err := store.ListByBook(context.Background(), "b1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(reviewCols))

	got, err := store.ListByUser(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByBook_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM reviews").
		WithArgs("b1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.ListByBook(context.Background(), "b1")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
