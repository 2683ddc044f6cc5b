package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateReviewRequest is the body of POST /books/:id/reviews.
type CreateReviewRequest struct {
	Rating       int        `json:"rating"`
	ReviewText   string     `json:"review_text"`
	HasSpoilers  bool       `json:"has_spoilers"`
	StartedDate  *time.Time `json:"started_date"`
	FinishedDate *time.Time `json:"finished_date"`
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating,
			validation.Required.Error("rating is required"),
			validation.Min(MinRating),
			validation.Max(MaxRating),
		),
		validation.Field(&r.ReviewText,
			validation.Required.Error("review text is required"),
			validation.RuneLength(MinReviewTextLength, MaxReviewTextLength),
		),
		validation.Field(&r.FinishedDate, validation.By(notBefore(r.StartedDate))),
	)
}

// UpdateReviewRequest is a partial patch: nil fields are left as they are.
// Rating is the only field that touches the book aggregate.
type UpdateReviewRequest struct {
	Rating       *int       `json:"rating"`
	ReviewText   *string    `json:"review_text"`
	HasSpoilers  *bool      `json:"has_spoilers"`
	StartedDate  *time.Time `json:"started_date"`
	FinishedDate *time.Time `json:"finished_date"`
}

func (r UpdateReviewRequest) Validate() error {
	// NilOrNotEmpty: a present zero rating or blank text must fail rather
	// than be skipped as "empty" by Min/RuneLength.
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating,
			validation.NilOrNotEmpty.Error("rating must be between 1 and 10"),
			validation.Min(MinRating),
			validation.Max(MaxRating),
		),
		validation.Field(&r.ReviewText,
			validation.NilOrNotEmpty.Error("review text cannot be blank"),
			validation.RuneLength(MinReviewTextLength, MaxReviewTextLength),
		),
		validation.Field(&r.FinishedDate, validation.By(notBefore(r.StartedDate))),
	)
}

// IsEmpty reports a patch with no fields set.
func (r UpdateReviewRequest) IsEmpty() bool {
	return r.Rating == nil &&
		r.ReviewText == nil &&
		r.HasSpoilers == nil &&
		r.StartedDate == nil &&
		r.FinishedDate == nil
}

// ApplyTo copies the present fields onto review.
func (r UpdateReviewRequest) ApplyTo(review *Review) {
	if r.Rating != nil {
		review.Rating = *r.Rating
	}
	if r.ReviewText != nil {
		review.ReviewText = *r.ReviewText
	}
	if r.HasSpoilers != nil {
		review.HasSpoilers = *r.HasSpoilers
	}
	if r.StartedDate != nil {
		started := r.StartedDate.UTC()
		review.StartedDate = &started
	}
	if r.FinishedDate != nil {
		finished := r.FinishedDate.UTC()
		review.FinishedDate = &finished
	}
}

// ValidateReadingDates checks the merged dates of a stored review.
func ValidateReadingDates(started, finished *time.Time) error {
	return validation.Errors{
		"finished_date": validation.Validate(finished, validation.By(notBefore(started))),
	}.Filter()
}

var errFinishedBeforeStarted = errors.New("must not be before started_date")

func notBefore(started *time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		var finished *time.Time
		switch v := value.(type) {
		case *time.Time:
			finished = v
		case time.Time:
			finished = &v
		}
		if started == nil || finished == nil {
			return nil
		}
		if finished.Before(*started) {
			return errFinishedBeforeStarted
		}
		return nil
	}
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// ReviewListResponse wraps a listing with its size.
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

func NewReviewListResponse(reviews []Review) ReviewListResponse {
	if reviews == nil {
		reviews = []Review{}
	}
	return ReviewListResponse{Reviews: reviews, Total: len(reviews)}
}
