package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/internal/shared"
)

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// CreateReview inserts a review and folds its rating into the book.
	CreateReview(ctx context.Context, requester shared.Principal, bookID string, req model.CreateReviewRequest) (*model.Review, error)

	// UpdateReview patches the requester's own review.
	UpdateReview(ctx context.Context, requester shared.Principal, bookID string, reviewID uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error)

	// DeleteReview removes a review; owners and admins only.
	DeleteReview(ctx context.Context, requester shared.Principal, bookID string, reviewID uuid.UUID) error

	ListBookReviews(ctx context.Context, bookID string) (*model.ReviewListResponse, error)
	ListUserReviews(ctx context.Context, userID string) (*model.ReviewListResponse, error)
}

// Config bounds the transaction retry loop and the listing cache.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	ReviewListTTL  time.Duration
}
