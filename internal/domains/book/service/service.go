package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/book/model"
	"bookreview-backend/internal/domains/book/repository"
	"bookreview-backend/internal/shared"
	"bookreview-backend/pkg/cache"
	"bookreview-backend/pkg/database"
)

type bookService struct {
	repo   repository.Repository
	cache  cache.Cache
	config Config
}

func NewBookService(repo repository.Repository, cache cache.Cache, config Config) ServiceInterface {
	return &bookService{
		repo:   repo,
		cache:  cache,
		config: config,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *bookService) CreateBook(ctx context.Context, requester shared.Principal, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}
	req.Normalize()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdBy := requester.UserID

	book := &model.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		CoverImage:  req.CoverImage,
		Description: req.Description,
		Genres:      req.Genres,
		CreatedBy:   &createdBy,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		if errors.Is(err, model.ErrBookAlreadyExists) {
			return nil, model.NewBookAlreadyExistsError(id)
		}
		return nil, model.NewInternalError(err)
	}

	s.invalidate(ctx, book.ID)

	log.Info().Str("book_id", book.ID).Str("created_by", createdBy).Msg("book created")
	return book, nil
}

// =====================================================
// READ (CACHED)
// =====================================================

func (s *bookService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	cacheKey := cache.BookKey(id)

	var cached model.Book
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("book cache read failed")
	}
	if found {
		return &cached, nil
	}

	epoch, epochErr := cache.Epoch(ctx, s.cache)

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, model.NewInternalError(err)
	}

	if epochErr == nil {
		s.fill(ctx, epoch, cacheKey, book, s.config.BookTTL)
	}

	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context) (*model.BookListResponse, error) {
	return s.cachedList(ctx, cache.BooksListKey(), s.repo.List)
}

func (s *bookService) ListBooksByGenre(ctx context.Context, genre string) (*model.BookListResponse, error) {
	genre = model.NormalizeGenre(genre)
	if genre == "" {
		return nil, model.NewValidationError(errors.New("genre is required"))
	}

	return s.cachedList(ctx, cache.BooksListKey("genre", genre), func(ctx context.Context) ([]model.Book, error) {
		return s.repo.ListByGenre(ctx, genre)
	})
}

func (s *bookService) cachedList(ctx context.Context, cacheKey string, load func(ctx context.Context) ([]model.Book, error)) (*model.BookListResponse, error) {
	var cached []model.Book
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("book list cache read failed")
	}
	if found {
		resp := model.NewBookListResponse(cached)
		return &resp, nil
	}

	epoch, epochErr := cache.Epoch(ctx, s.cache)

	books, err := load(ctx)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	if epochErr == nil {
		s.fill(ctx, epoch, cacheKey, books, s.config.BookListTTL)
	}

	resp := model.NewBookListResponse(books)
	return &resp, nil
}

// =====================================================
// UPDATE
// =====================================================

// UpdateBook patches catalog fields. The write is guarded by the version
// read, so a concurrent review transaction makes it re-read and re-apply.
func (s *bookService) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	var book *model.Book
	policy := database.RetryPolicy{
		MaxAttempts: s.config.MaxAttempts,
		OnRetry: func(attempt int, err error) {
			log.Warn().Err(err).Str("book_id", id).Int("attempt", attempt).Msg("book update conflict, retrying")
		},
	}

	err := database.WithRetry(ctx, policy, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.IsEmpty() {
			book = current
			return nil
		}
		req.ApplyTo(current)
		if err := s.repo.UpdateCatalog(ctx, current); err != nil {
			return err
		}
		book = current
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, model.NewInternalError(fmt.Errorf("update book %s: %w", id, err))
	}

	if !req.IsEmpty() {
		s.invalidate(ctx, id)
	}

	return book, nil
}

// =====================================================
// DELETE
// =====================================================

func (s *bookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return model.NewBookNotFoundError(id)
		}
		return model.NewInternalError(err)
	}

	s.invalidate(ctx, id)

	log.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

// =====================================================
// HELPERS
// =====================================================

// invalidate runs after the write committed, so it must not be cut short
// by the caller going away.
func (s *bookService) invalidate(ctx context.Context, id string) {
	if err := cache.EvictBook(context.WithoutCancel(ctx), s.cache, id); err != nil {
		log.Warn().Err(err).Str("book_id", id).Msg("failed to evict book cache")
	}
}

// fill caches a value loaded under epoch, unless an eviction happened since.
func (s *bookService) fill(ctx context.Context, epoch int64, key string, value interface{}, ttl time.Duration) {
	if _, err := s.cache.SetIfUnchanged(ctx, cache.EvictionEpochKey, epoch, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("book cache write failed")
	}
}
