package model

const (
	// Rating
	MinRating = 1
	MaxRating = 10

	// Content limits, in runes
	MinReviewTextLength = 5
	MaxReviewTextLength = 5000
)
