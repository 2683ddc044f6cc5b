package cache

import "strings"

const (
	bookPrefix = "book:"

	// BooksNamespace groups every cached collection listing of books.
	BooksNamespace = "books:all"

	// BooksNamespacePattern matches all keys under BooksNamespace.
	BooksNamespacePattern = BooksNamespace + ":*"
)

// BookKey is the cache key of a single book document.
func BookKey(bookID string) string {
	return bookPrefix + bookID
}

// BookReviewsKey is the cache key of a book's review listing.
func BookReviewsKey(bookID string) string {
	return bookPrefix + bookID + ":reviews"
}

// BooksListKey builds a key inside the collection namespace.
func BooksListKey(parts ...string) string {
	if len(parts) == 0 {
		return BooksNamespace + ":list"
	}
	return BooksNamespace + ":" + strings.Join(parts, ":")
}

// BookKeys returns every single-key entry that depends on one book.
func BookKeys(bookID string) []string {
	return []string{BookKey(bookID), BookReviewsKey(bookID)}
}
