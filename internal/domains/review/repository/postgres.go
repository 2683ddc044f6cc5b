package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/pkg/database"
)

const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUniqueViolation     = "23505"
)

// reviewColumns is the column order scanReview expects.
const reviewColumns = `
	id, book_id, user_id, reviewer_name, avatar_url,
	rating, review_text, has_spoilers, started_date, finished_date,
	created_at, updated_at`

// Repeatable read gives each attempt one snapshot: a concurrent commit on
// the same book row makes our write fail with 40001 instead of silently
// applying a stale delta.
var txOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// =====================================================
// POSTGRES STORE IMPLEMENTATION
// =====================================================

type postgresStore struct {
	db database.Pool
}

func NewPostgresStore(db database.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	return database.WithTransaction(ctx, s.db, txOptions, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

func (s *postgresStore) ListByBook(ctx context.Context, bookID string) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC, id DESC`

	return s.list(ctx, query, bookID)
}

func (s *postgresStore) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	return s.list(ctx, query, userID)
}

func (s *postgresStore) list(ctx context.Context, query string, arg string) ([]model.Review, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// =====================================================
// TRANSACTION SCOPE
// =====================================================

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) GetBookAggregate(ctx context.Context, bookID string) (model.BookAggregate, error) {
	query := `SELECT rating_average, review_count, version FROM books WHERE id = $1`

	var agg model.BookAggregate
	err := t.tx.QueryRow(ctx, query, bookID).Scan(&agg.RatingAverage, &agg.ReviewCount, &agg.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agg, model.ErrBookNotFound
		}
		return agg, fmt.Errorf("failed to read book aggregate: %w", err)
	}

	return agg, nil
}

func (t *postgresTx) GetReview(ctx context.Context, bookID string, reviewID uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE book_id = $1 AND id = $2`

	review, err := scanReview(t.tx.QueryRow(ctx, query, bookID, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

func (t *postgresTx) InsertReview(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := t.tx.Exec(ctx, query,
		review.ID,
		review.BookID,
		review.UserID,
		review.ReviewerName,
		review.AvatarURL,
		review.Rating,
		review.ReviewText,
		review.HasSpoilers,
		review.StartedDate,
		review.FinishedDate,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case sqlStateForeignKeyViolation:
				return model.ErrBookNotFound
			case sqlStateUniqueViolation:
				return model.ErrConflict
			}
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

// UpdateReview writes the mutable fields only; user_id and created_at are
// never part of the SET list.
func (t *postgresTx) UpdateReview(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $3,
		    review_text = $4,
		    has_spoilers = $5,
		    started_date = $6,
		    finished_date = $7,
		    updated_at = $8
		WHERE book_id = $1 AND id = $2`

	tag, err := t.tx.Exec(ctx, query,
		review.BookID,
		review.ID,
		review.Rating,
		review.ReviewText,
		review.HasSpoilers,
		review.StartedDate,
		review.FinishedDate,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s vanished during update: %w", review.ID, database.ErrTxConflict)
	}

	return nil
}

func (t *postgresTx) DeleteReview(ctx context.Context, bookID string, reviewID uuid.UUID) error {
	query := `DELETE FROM reviews WHERE book_id = $1 AND id = $2`

	tag, err := t.tx.Exec(ctx, query, bookID, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s vanished during delete: %w", reviewID, database.ErrTxConflict)
	}

	return nil
}

func (t *postgresTx) UpdateBookAggregate(ctx context.Context, bookID string, agg model.BookAggregate, expectedVersion int64) error {
	query := `
		UPDATE books
		SET rating_average = $2,
		    review_count = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $4`

	tag, err := t.tx.Exec(ctx, query, bookID, agg.RatingAverage, agg.ReviewCount, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update book aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book %s moved past version %d: %w", bookID, expectedVersion, database.ErrTxConflict)
	}

	return nil
}

// =====================================================
// HELPERS
// =====================================================

func scanReview(row pgx.Row) (*model.Review, error) {
	review := &model.Review{}
	err := row.Scan(
		&review.ID,
		&review.BookID,
		&review.UserID,
		&review.ReviewerName,
		&review.AvatarURL,
		&review.Rating,
		&review.ReviewText,
		&review.HasSpoilers,
		&review.StartedDate,
		&review.FinishedDate,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}
