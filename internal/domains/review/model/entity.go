package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a child of exactly one book. UserID and CreatedAt never change
// after insert; ReviewerName and AvatarURL are copied from the author's
// profile at creation time.
type Review struct {
	ID     uuid.UUID `json:"id"`
	BookID string    `json:"book_id"`
	UserID string    `json:"user_id"`

	ReviewerName string  `json:"reviewer_name"`
	AvatarURL    *string `json:"avatar_url,omitempty"`

	// Content
	Rating       int        `json:"rating"`
	ReviewText   string     `json:"review_text"`
	HasSpoilers  bool       `json:"has_spoilers"`
	StartedDate  *time.Time `json:"started_date,omitempty"`
	FinishedDate *time.Time `json:"finished_date,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookAggregate is the rating summary stored on a book row together with
// the row version it was read at.
type BookAggregate struct {
	RatingAverage float64
	ReviewCount   int
	Version       int64
}
