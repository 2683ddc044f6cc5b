package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/book/model"
	"bookreview-backend/internal/domains/book/service"
	"bookreview-backend/internal/shared/middleware"
	"bookreview-backend/internal/shared/response"
)

type BookHandler struct {
	bookService service.ServiceInterface
}

func NewBookHandler(bookService service.ServiceInterface) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// CreateBook
// POST /api/v1/books (admin)
func (h *BookHandler) CreateBook(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), principal, req)
	if err != nil {
		respondBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book)
}

// ListBooks
// GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	list, err := h.bookService.ListBooks(c.Request.Context())
	if err != nil {
		respondBookError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, list.Books, &response.Meta{Total: list.Total})
}

// ListBooksByGenre
// GET /api/v1/books/genre/:genre
func (h *BookHandler) ListBooksByGenre(c *gin.Context) {
	list, err := h.bookService.ListBooksByGenre(c.Request.Context(), c.Param("genre"))
	if err != nil {
		respondBookError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, list.Books, &response.Meta{Total: list.Total})
}

// GetBook
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.bookService.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// UpdateBook
// PATCH /api/v1/books/:id (admin)
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondBookError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook
// DELETE /api/v1/books/:id (admin)
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.bookService.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		respondBookError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Book deleted successfully",
	})
}

func respondBookError(c *gin.Context, err error) {
	var bookErr *model.BookError
	if !errors.As(err, &bookErr) || bookErr.Code == model.ErrCodeInternal {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Msg("book request failed")
		response.InternalServerError(c)
		return
	}

	status := http.StatusInternalServerError
	switch bookErr.Code {
	case model.ErrCodeValidation:
		status = http.StatusBadRequest
	case model.ErrCodeBookNotFound:
		status = http.StatusNotFound
	case model.ErrCodeBookAlreadyExists:
		status = http.StatusConflict
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.ErrorWithDetails(c, status, bookErr.Code, bookErr.Message, fieldErrs)
		return
	}
	response.ErrorResponse(c, status, bookErr.Code, bookErr.Message)
}
