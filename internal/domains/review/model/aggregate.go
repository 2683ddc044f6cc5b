package model

import (
	"github.com/shopspring/decimal"
)

// Running-mean updates. Ratings are integers, so average*count is rounded
// back to a whole sum before it is adjusted; repeated add/remove cycles do
// not drift. The result is converted back to float64 for storage.
// Version is carried through untouched: it is the version the caller read
// and must guard the write with.

// WithAdded folds one new rating into the aggregate.
func (a BookAggregate) WithAdded(rating int) BookAggregate {
	count := int64(a.ReviewCount)
	sum := a.sum().Add(decimal.NewFromInt(int64(rating)))

	return BookAggregate{
		RatingAverage: mean(sum, count+1),
		ReviewCount:   a.ReviewCount + 1,
		Version:       a.Version,
	}
}

// WithReplaced swaps one existing rating for another; the count is unchanged.
// A non-positive count means the book row disagrees with the review that was
// just read, which no retry can fix.
func (a BookAggregate) WithReplaced(oldRating, newRating int) (BookAggregate, error) {
	if a.ReviewCount <= 0 {
		return a, ErrInconsistentAggregate
	}
	if oldRating == newRating {
		return a, nil
	}

	sum := a.sum().
		Sub(decimal.NewFromInt(int64(oldRating))).
		Add(decimal.NewFromInt(int64(newRating)))

	return BookAggregate{
		RatingAverage: mean(sum, int64(a.ReviewCount)),
		ReviewCount:   a.ReviewCount,
		Version:       a.Version,
	}, nil
}

// WithRemoved takes one rating out. Removing the last review resets to
// exactly zero instead of dividing by zero.
func (a BookAggregate) WithRemoved(rating int) BookAggregate {
	if a.ReviewCount > 1 {
		sum := a.sum().Sub(decimal.NewFromInt(int64(rating)))
		return BookAggregate{
			RatingAverage: mean(sum, int64(a.ReviewCount-1)),
			ReviewCount:   a.ReviewCount - 1,
			Version:       a.Version,
		}
	}

	return BookAggregate{Version: a.Version}
}

// Equal compares the stored fields, ignoring Version.
func (a BookAggregate) Equal(other BookAggregate) bool {
	return a.RatingAverage == other.RatingAverage && a.ReviewCount == other.ReviewCount
}

func (a BookAggregate) sum() decimal.Decimal {
	return decimal.NewFromFloat(a.RatingAverage).Mul(decimal.NewFromInt(int64(a.ReviewCount))).Round(0)
}

func mean(sum decimal.Decimal, count int64) float64 {
	if count <= 0 {
		return 0
	}
	avg, _ := sum.Div(decimal.NewFromInt(count)).Float64()
	return avg
}
