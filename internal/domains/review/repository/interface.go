package repository

import (
	"context"

	"github.com/google/uuid"

	"bookreview-backend/internal/domains/review/model"
)

// =====================================================
// REVIEW STORE INTERFACE
// =====================================================

// Store is the aggregate-consistent review store. RunInTx runs exactly one
// transaction attempt; retrying is the caller's decision.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// ListByBook returns a book's reviews, newest first.
	ListByBook(ctx context.Context, bookID string) ([]model.Review, error)

	// ListByUser returns one user's reviews across all books, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Review, error)
}

// Tx is the read/write surface available inside one transaction. Every
// precondition must be checked against values read through Tx.
type Tx interface {
	// GetBookAggregate returns model.ErrBookNotFound when the book is gone.
	GetBookAggregate(ctx context.Context, bookID string) (model.BookAggregate, error)

	// GetReview returns model.ErrReviewNotFound when the review is gone.
	GetReview(ctx context.Context, bookID string, reviewID uuid.UUID) (*model.Review, error)

	InsertReview(ctx context.Context, review *model.Review) error
	UpdateReview(ctx context.Context, review *model.Review) error
	DeleteReview(ctx context.Context, bookID string, reviewID uuid.UUID) error

	// UpdateBookAggregate writes agg only if the book is still at
	// expectedVersion, and fails with database.ErrTxConflict otherwise.
	UpdateBookAggregate(ctx context.Context, bookID string, agg model.BookAggregate, expectedVersion int64) error
}
