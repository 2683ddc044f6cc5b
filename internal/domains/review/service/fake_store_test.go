package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/internal/domains/review/repository"
	"bookreview-backend/pkg/database"
)

// fakeStore is an in-memory Store with snapshot transactions and a
// version guard checked at commit, so lost races surface as conflicts.
type fakeStore struct {
	mu      sync.Mutex
	books   map[string]model.BookAggregate
	reviews map[uuid.UUID]model.Review

	txCount    int
	bookWrites int

	// forceConflicts fails the next n transactions before they start.
	forceConflicts int
	// afterRead runs once, right after the next aggregate read.
	afterRead func()
}

func newFakeStore(bookIDs ...string) *fakeStore {
	s := &fakeStore{
		books:   map[string]model.BookAggregate{},
		reviews: map[uuid.UUID]model.Review{},
	}
	for _, id := range bookIDs {
		s.books[id] = model.BookAggregate{Version: 1}
	}
	return s
}

func (s *fakeStore) aggregate(bookID string) model.BookAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[bookID]
}

func (s *fakeStore) ratings(bookID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.reviews {
		if r.BookID == bookID {
			out = append(out, r.Rating)
		}
	}
	return out
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	s.txCount++
	if s.forceConflicts > 0 {
		s.forceConflicts--
		s.mu.Unlock()
		return fmt.Errorf("forced: %w", database.ErrTxConflict)
	}
	tx := &fakeTx{
		store:   s,
		books:   make(map[string]model.BookAggregate, len(s.books)),
		reviews: make(map[uuid.UUID]model.Review, len(s.reviews)),
		guards:  map[string]int64{},
	}
	for k, v := range s.books {
		tx.books[k] = v
	}
	for k, v := range s.reviews {
		tx.reviews[k] = v
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *fakeStore) commit(tx *fakeTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for bookID, expected := range tx.guards {
		if s.books[bookID].Version != expected {
			return fmt.Errorf("book %s at version %d: %w", bookID, s.books[bookID].Version, database.ErrTxConflict)
		}
	}
	for _, op := range tx.ops {
		op(s)
	}
	s.bookWrites += len(tx.guards)
	return nil
}

func (s *fakeStore) takeAfterRead() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	hook := s.afterRead
	s.afterRead = nil
	return hook
}

func (s *fakeStore) ListByBook(ctx context.Context, bookID string) ([]model.Review, error) {
	return s.list(func(r model.Review) bool { return r.BookID == bookID }), nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	return s.list(func(r model.Review) bool { return r.UserID == userID }), nil
}

func (s *fakeStore) list(keep func(model.Review) bool) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Review{}
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

type fakeTx struct {
	store   *fakeStore
	books   map[string]model.BookAggregate
	reviews map[uuid.UUID]model.Review
	guards  map[string]int64
	ops     []func(s *fakeStore)
}

func (t *fakeTx) GetBookAggregate(ctx context.Context, bookID string) (model.BookAggregate, error) {
	agg, ok := t.books[bookID]
	if !ok {
		return model.BookAggregate{}, model.ErrBookNotFound
	}
	if hook := t.store.takeAfterRead(); hook != nil {
		hook()
	}
	return agg, nil
}

func (t *fakeTx) GetReview(ctx context.Context, bookID string, reviewID uuid.UUID) (*model.Review, error) {
	r, ok := t.reviews[reviewID]
	if !ok || r.BookID != bookID {
		return nil, model.ErrReviewNotFound
	}
	return &r, nil
}

func (t *fakeTx) InsertReview(ctx context.Context, review *model.Review) error {
	if _, ok := t.books[review.BookID]; !ok {
		return model.ErrBookNotFound
	}
	if _, ok := t.reviews[review.ID]; ok {
		return model.ErrConflict
	}
	r := *review
	t.reviews[r.ID] = r
	t.ops = append(t.ops, func(s *fakeStore) { s.reviews[r.ID] = r })
	return nil
}

func (t *fakeTx) UpdateReview(ctx context.Context, review *model.Review) error {
	if _, ok := t.reviews[review.ID]; !ok {
		return database.ErrTxConflict
	}
	r := *review
	t.reviews[r.ID] = r
	t.ops = append(t.ops, func(s *fakeStore) { s.reviews[r.ID] = r })
	return nil
}

func (t *fakeTx) DeleteReview(ctx context.Context, bookID string, reviewID uuid.UUID) error {
	if _, ok := t.reviews[reviewID]; !ok {
		return database.ErrTxConflict
	}
	delete(t.reviews, reviewID)
	t.ops = append(t.ops, func(s *fakeStore) { delete(s.reviews, reviewID) })
	return nil
}

func (t *fakeTx) UpdateBookAggregate(ctx context.Context, bookID string, agg model.BookAggregate, expectedVersion int64) error {
	current, ok := t.books[bookID]
	if !ok || current.Version != expectedVersion {
		return database.ErrTxConflict
	}
	next := model.BookAggregate{
		RatingAverage: agg.RatingAverage,
		ReviewCount:   agg.ReviewCount,
		Version:       expectedVersion + 1,
	}
	t.books[bookID] = next
	t.guards[bookID] = expectedVersion
	t.ops = append(t.ops, func(s *fakeStore) { s.books[bookID] = next })
	return nil
}
