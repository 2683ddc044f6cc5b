package cache

import (
	"context"
	"errors"
)

// EvictionEpochKey counts book invalidations. A read-through load that
// started before the latest invalidation must not populate the cache.
const EvictionEpochKey = "books:epoch"

// Epoch reads the current eviction epoch. Take it before loading from the
// database and pass it to SetIfUnchanged when filling.
func Epoch(ctx context.Context, c Cache) (int64, error) {
	var epoch int64
	if _, err := c.Get(ctx, EvictionEpochKey, &epoch); err != nil {
		return 0, err
	}
	return epoch, nil
}

// EvictBook bumps the epoch, then drops the book's own keys and every
// collection listing. The bump goes first: a load that fills between the
// two steps is deleted, one that fills later sees the new epoch.
func EvictBook(ctx context.Context, c Cache, bookID string) error {
	var errs []error
	if _, err := c.Increment(ctx, EvictionEpochKey); err != nil {
		errs = append(errs, err)
	}
	if err := c.Delete(ctx, BookKeys(bookID)...); err != nil {
		errs = append(errs, err)
	}
	if err := c.DeletePattern(ctx, BooksNamespacePattern); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
