package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookreview-backend/internal/domains/book/model"
	"bookreview-backend/pkg/database"
)

const sqlStateUniqueViolation = "23505"

const bookColumns = `
	id, title, author, cover_image, description, genres,
	rating_average, review_count, version,
	created_by, created_at, updated_at`

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, cover_image, description, genres, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING rating_average, review_count, version, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.CoverImage,
		book.Description,
		book.Genres,
		book.CreatedBy,
	).Scan(&book.RatingAverage, &book.ReviewCount, &book.Version, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
			return model.ErrBookAlreadyExists
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		ORDER BY created_at DESC, id`

	return r.list(ctx, query)
}

func (r *postgresRepository) ListByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE $1 = ANY(genres)
		ORDER BY created_at DESC, id`

	return r.list(ctx, query, genre)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) UpdateCatalog(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $3,
		    author = $4,
		    cover_image = $5,
		    description = $6,
		    genres = $7,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.db.QueryRow(ctx, query,
		book.ID,
		book.Version,
		book.Title,
		book.Author,
		book.CoverImage,
		book.Description,
		book.Genres,
	).Scan(&book.Version, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("book %s moved past version %d: %w", book.ID, book.Version, database.ErrTxConflict)
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (*model.Book, error) {
	book := &model.Book{}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.CoverImage,
		&book.Description,
		&book.Genres,
		&book.RatingAverage,
		&book.ReviewCount,
		&book.Version,
		&book.CreatedBy,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if book.Genres == nil {
		book.Genres = []string{}
	}
	return book, nil
}
