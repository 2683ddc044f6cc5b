package repository

import (
	"context"

	"bookreview-backend/internal/domains/book/model"
)

// Repository is the catalog side of the books table. It never writes
// rating_average or review_count.
type Repository interface {
	// Create returns model.ErrBookAlreadyExists on a duplicate id.
	Create(ctx context.Context, book *model.Book) error

	// GetByID returns model.ErrBookNotFound when the book does not exist.
	GetByID(ctx context.Context, id string) (*model.Book, error)

	List(ctx context.Context) ([]model.Book, error)
	ListByGenre(ctx context.Context, genre string) ([]model.Book, error)

	// UpdateCatalog writes the catalog fields if the row is still at
	// book.Version and bumps the version. A moved row yields database.ErrTxConflict.
	UpdateCatalog(ctx context.Context, book *model.Book) error

	// Delete removes the book and, through the foreign key, its reviews.
	Delete(ctx context.Context, id string) error
}
