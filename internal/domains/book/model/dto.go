package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MaxIDLength          = 128
	MaxTitleLength       = 300
	MaxAuthorLength      = 200
	MaxDescriptionLength = 10000
	MaxGenres            = 20
	MaxGenreLength       = 50
)

// Book ids become part of cache keys, so ':' and whitespace are not allowed.
var bookIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedBookIDs collide with static segments under /books/, so a book with
// one of these ids could never be fetched by GET /books/:id.
var reservedBookIDs = []string{"genre"}

func notReservedID(value interface{}) error {
	id, _ := value.(string)
	for _, reserved := range reservedBookIDs {
		if strings.EqualFold(id, reserved) {
			return validation.NewError("validation_id_reserved", "is reserved")
		}
	}
	return nil
}

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateBookRequest is the body of POST /books. ID is optional; the server
// assigns a UUID when it is empty.
type CreateBookRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	CoverImage  *string  `json:"cover_image"`
	Description *string  `json:"description"`
	Genres      []string `json:"genres"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID,
			validation.Length(1, MaxIDLength),
			validation.Match(bookIDPattern).Error("may only contain letters, digits, '-' and '_'"),
			validation.By(notReservedID),
		),
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.Author, validation.Required, validation.RuneLength(1, MaxAuthorLength)),
		validation.Field(&r.CoverImage, validation.NilOrNotEmpty, is.URL),
		validation.Field(&r.Description, validation.RuneLength(0, MaxDescriptionLength)),
		validation.Field(&r.Genres, genreRules()...),
	)
}

// Normalize trims text fields and lower-cases genres.
func (r *CreateBookRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Genres = NormalizeGenres(r.Genres)
}

// UpdateBookRequest patches catalog fields only.
type UpdateBookRequest struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	CoverImage  *string   `json:"cover_image"`
	Description *string   `json:"description"`
	Genres      *[]string `json:"genres"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.RuneLength(1, MaxAuthorLength)),
		validation.Field(&r.CoverImage, validation.NilOrNotEmpty, is.URL),
		validation.Field(&r.Description, validation.RuneLength(0, MaxDescriptionLength)),
		// Each does not follow pointers.
		validation.Field(&r.Genres, validation.By(func(interface{}) error {
			if r.Genres == nil {
				return nil
			}
			return validation.Validate(*r.Genres, genreRules()...)
		})),
	)
}

func (r UpdateBookRequest) IsEmpty() bool {
	return r.Title == nil &&
		r.Author == nil &&
		r.CoverImage == nil &&
		r.Description == nil &&
		r.Genres == nil
}

// ApplyTo copies the present fields onto book. Aggregate fields are never touched.
func (r UpdateBookRequest) ApplyTo(book *Book) {
	if r.Title != nil {
		book.Title = strings.TrimSpace(*r.Title)
	}
	if r.Author != nil {
		book.Author = strings.TrimSpace(*r.Author)
	}
	if r.CoverImage != nil {
		cover := *r.CoverImage
		book.CoverImage = &cover
	}
	if r.Description != nil {
		description := *r.Description
		book.Description = &description
	}
	if r.Genres != nil {
		book.Genres = NormalizeGenres(*r.Genres)
	}
}

func genreRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(0, MaxGenres),
		validation.Each(
			validation.Required,
			validation.RuneLength(1, MaxGenreLength),
			validation.By(noColon),
		),
	}
}

func noColon(value interface{}) error {
	s, _ := value.(string)
	if strings.Contains(s, ":") {
		return validation.NewError("validation_genre_colon", "must not contain ':'")
	}
	return nil
}

// NormalizeGenres lower-cases, trims and de-duplicates genres, keeping order.
// Never returns nil.
func NormalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		g = NormalizeGenre(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func NormalizeGenre(genre string) string {
	return strings.ToLower(strings.TrimSpace(genre))
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type BookListResponse struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

func NewBookListResponse(books []Book) BookListResponse {
	if books == nil {
		books = []Book{}
	}
	return BookListResponse{Books: books, Total: len(books)}
}
