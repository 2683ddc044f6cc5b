package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/internal/domains/review/repository"
	"bookreview-backend/internal/infrastructure/metrics"
	"bookreview-backend/internal/shared"
	"bookreview-backend/pkg/cache"
	"bookreview-backend/pkg/database"
)

// Operation labels used in logs and metrics.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type reviewService struct {
	store   repository.Store
	cache   cache.Cache
	metrics *metrics.TxMetrics
	config  Config
	now     func() time.Time
}

func NewReviewService(
	store repository.Store,
	cache cache.Cache,
	txMetrics *metrics.TxMetrics,
	config Config,
) ServiceInterface {
	return &reviewService{
		store:   store,
		cache:   cache,
		metrics: txMetrics,
		config:  config,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// =====================================================
// CREATE REVIEW
// =====================================================

func (s *reviewService) CreateReview(
	ctx context.Context,
	requester shared.Principal,
	bookID string,
	req model.CreateReviewRequest,
) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	now := s.now()
	review := &model.Review{
		ID:           uuid.New(),
		BookID:       bookID,
		UserID:       requester.UserID,
		ReviewerName: reviewerName(requester),
		AvatarURL:    requester.AvatarURL,
		Rating:       req.Rating,
		ReviewText:   req.ReviewText,
		HasSpoilers:  req.HasSpoilers,
		StartedDate:  utcPtr(req.StartedDate),
		FinishedDate: utcPtr(req.FinishedDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.runTx(ctx, opCreate, bookID, func(tx repository.Tx) error {
		agg, err := tx.GetBookAggregate(ctx, bookID)
		if err != nil {
			return err
		}
		if err := tx.InsertReview(ctx, review); err != nil {
			return err
		}
		return tx.UpdateBookAggregate(ctx, bookID, agg.WithAdded(review.Rating), agg.Version)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, bookID)

	log.Info().
		Str("book_id", bookID).
		Str("review_id", review.ID.String()).
		Str("user_id", requester.UserID).
		Msg("review created")

	return review, nil
}

// =====================================================
// UPDATE REVIEW
// =====================================================

func (s *reviewService) UpdateReview(
	ctx context.Context,
	requester shared.Principal,
	bookID string,
	reviewID uuid.UUID,
	req model.UpdateReviewRequest,
) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	var (
		result *model.Review
		wrote  bool
	)

	err := s.runTx(ctx, opUpdate, bookID, func(tx repository.Tx) error {
		// Reset per attempt: a retried body must not see a previous attempt's state.
		result, wrote = nil, false

		agg, err := tx.GetBookAggregate(ctx, bookID)
		if err != nil {
			return err
		}
		review, err := tx.GetReview(ctx, bookID, reviewID)
		if err != nil {
			return err
		}
		if err := model.Authorize(model.ActionUpdate, requester.UserID, requester.Role, review.UserID); err != nil {
			return err
		}

		if req.IsEmpty() {
			result = review
			return nil
		}

		oldRating := review.Rating
		req.ApplyTo(review)
		if err := model.ValidateReadingDates(review.StartedDate, review.FinishedDate); err != nil {
			return model.NewValidationError(err)
		}
		review.UpdatedAt = s.now()

		if err := tx.UpdateReview(ctx, review); err != nil {
			return err
		}

		if review.Rating != oldRating {
			next, err := agg.WithReplaced(oldRating, review.Rating)
			if err != nil {
				return err
			}
			if err := tx.UpdateBookAggregate(ctx, bookID, next, agg.Version); err != nil {
				return err
			}
		}

		result, wrote = review, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wrote {
		s.invalidate(ctx, bookID)
	}

	return result, nil
}

// =====================================================
// DELETE REVIEW
// =====================================================

func (s *reviewService) DeleteReview(
	ctx context.Context,
	requester shared.Principal,
	bookID string,
	reviewID uuid.UUID,
) error {
	err := s.runTx(ctx, opDelete, bookID, func(tx repository.Tx) error {
		agg, err := tx.GetBookAggregate(ctx, bookID)
		if err != nil {
			return err
		}
		review, err := tx.GetReview(ctx, bookID, reviewID)
		if err != nil {
			return err
		}
		if err := model.Authorize(model.ActionDelete, requester.UserID, requester.Role, review.UserID); err != nil {
			return err
		}

		if err := tx.DeleteReview(ctx, bookID, reviewID); err != nil {
			return err
		}
		return tx.UpdateBookAggregate(ctx, bookID, agg.WithRemoved(review.Rating), agg.Version)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, bookID)

	log.Info().
		Str("book_id", bookID).
		Str("review_id", reviewID.String()).
		Str("user_id", requester.UserID).
		Msg("review deleted")

	return nil
}

// =====================================================
// LISTINGS
// =====================================================

func (s *reviewService) ListBookReviews(ctx context.Context, bookID string) (*model.ReviewListResponse, error) {
	cacheKey := cache.BookReviewsKey(bookID)

	var cached []model.Review
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("review list cache read failed")
	}
	if found {
		resp := model.NewReviewListResponse(cached)
		return &resp, nil
	}

	epoch, epochErr := cache.Epoch(ctx, s.cache)

	reviews, err := s.store.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list book reviews: %w", err)
	}

	// A write that committed while we were reading has already evicted this
	// key; filling it now would bring the old listing back.
	if epochErr == nil {
		if _, err := s.cache.SetIfUnchanged(ctx, cache.EvictionEpochKey, epoch, cacheKey, reviews, s.config.ReviewListTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("review list cache write failed")
		}
	}

	resp := model.NewReviewListResponse(reviews)
	return &resp, nil
}

func (s *reviewService) ListUserReviews(ctx context.Context, userID string) (*model.ReviewListResponse, error) {
	reviews, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}

	resp := model.NewReviewListResponse(reviews)
	return &resp, nil
}

// =====================================================
// TRANSACTION RUNNER
// =====================================================

// runTx runs fn as one store transaction per attempt, retrying lost races
// with backoff, and maps whatever is left to a ReviewError.
func (s *reviewService) runTx(ctx context.Context, op, bookID string, fn func(tx repository.Tx) error) error {
	start := time.Now()

	policy := database.RetryPolicy{
		MaxAttempts:    s.config.MaxAttempts,
		InitialBackoff: s.config.InitialBackoff,
		MaxBackoff:     s.config.MaxBackoff,
		OnRetry: func(attempt int, err error) {
			log.Warn().
				Err(err).
				Str("operation", op).
				Str("book_id", bookID).
				Int("attempt", attempt).
				Msg("review transaction conflict, retrying")
		},
	}

	err := database.WithRetry(ctx, policy, func(ctx context.Context) error {
		s.metrics.ObserveAttempt(op)
		err := s.store.RunInTx(ctx, fn)
		if database.IsRetryable(err) {
			s.metrics.ObserveConflict(op)
		}
		return err
	})

	switch {
	case err == nil:
		s.metrics.ObserveDuration(op, metrics.OutcomeCommitted, time.Since(start))
		return nil
	case errors.Is(err, database.ErrRetryExhausted):
		s.metrics.ObserveExhausted(op)
		s.metrics.ObserveDuration(op, metrics.OutcomeExhausted, time.Since(start))
	default:
		s.metrics.ObserveDuration(op, metrics.OutcomeFailed, time.Since(start))
	}

	return mapTxError(op, bookID, err)
}

func mapTxError(op, bookID string, err error) error {
	var reviewErr *model.ReviewError
	switch {
	case errors.As(err, &reviewErr):
		return reviewErr
	case errors.Is(err, database.ErrRetryExhausted):
		log.Error().Err(err).Str("operation", op).Str("book_id", bookID).Msg("review transaction gave up")
		return model.NewRetryExhaustedError(err)
	case errors.Is(err, model.ErrBookNotFound):
		return model.NewBookNotFoundError(bookID)
	case errors.Is(err, model.ErrReviewNotFound):
		return model.NewReviewNotFoundError()
	case errors.Is(err, model.ErrConflict):
		return model.NewConflictError()
	default:
		log.Error().Err(err).Str("operation", op).Str("book_id", bookID).Msg("review transaction failed")
		return model.NewTransactionFailureError(err)
	}
}

// =====================================================
// HELPERS
// =====================================================

// invalidate evicts everything derived from the book. The write is already
// committed, so eviction outlives a cancelled request and a cache failure is
// logged and not returned.
func (s *reviewService) invalidate(ctx context.Context, bookID string) {
	if err := cache.EvictBook(context.WithoutCancel(ctx), s.cache, bookID); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Msg("failed to evict book cache")
	}
}

func reviewerName(p shared.Principal) string {
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
