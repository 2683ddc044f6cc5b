package service

import (
	"context"
	"time"

	"bookreview-backend/internal/domains/book/model"
	"bookreview-backend/internal/shared"
)

type ServiceInterface interface {
	CreateBook(ctx context.Context, requester shared.Principal, req model.CreateBookRequest) (*model.Book, error)
	GetBook(ctx context.Context, id string) (*model.Book, error)
	ListBooks(ctx context.Context) (*model.BookListResponse, error)
	ListBooksByGenre(ctx context.Context, genre string) (*model.BookListResponse, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// Config holds cache lifetimes and the retry bound for catalog patches.
type Config struct {
	BookTTL     time.Duration
	BookListTTL time.Duration
	MaxAttempts int
}
