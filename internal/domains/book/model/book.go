package model

import "time"

// Book is a catalog entry. RatingAverage, ReviewCount and Version are
// maintained by the review store; catalog writes never set the aggregate.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	Description *string  `json:"description,omitempty"`
	Genres      []string `json:"genres"`

	// Aggregate
	RatingAverage float64 `json:"rating_average"`
	ReviewCount   int     `json:"review_count"`
	Version       int64   `json:"version"`

	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
