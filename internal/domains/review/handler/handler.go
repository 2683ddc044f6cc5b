package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/review/model"
	"bookreview-backend/internal/domains/review/service"
	"bookreview-backend/internal/shared/middleware"
	"bookreview-backend/internal/shared/response"
)

// =====================================================
// REVIEW HANDLER
// =====================================================

type ReviewHandler struct {
	reviewService service.ServiceInterface
}

func NewReviewHandler(reviewService service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// =====================================================
// BOOK REVIEW ENDPOINTS
// =====================================================

// CreateReview
// POST /api/v1/books/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// ListBookReviews
// GET /api/v1/books/:id/reviews
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	list, err := h.reviewService.ListBookReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondReviewError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list.Reviews, &response.Meta{Total: list.Total})
}

// UpdateReview
// PATCH /api/v1/books/:id/reviews/:reviewId
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), principal, c.Param("id"), reviewID, req)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// DeleteReview
// DELETE /api/v1/books/:id/reviews/:reviewId
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), principal, c.Param("id"), reviewID); err != nil {
		respondReviewError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Review deleted successfully",
	})
}

// =====================================================
// USER REVIEW ENDPOINTS
// =====================================================

// ListUserReviews
// GET /api/v1/users/:uid/reviews
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	h.listUserReviews(c, c.Param("uid"))
}

// ListMyReviews
// GET /api/v1/users/me/reviews
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	h.listUserReviews(c, principal.UserID)
}

func (h *ReviewHandler) listUserReviews(c *gin.Context, userID string) {
	list, err := h.reviewService.ListUserReviews(c.Request.Context(), userID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list.Reviews, &response.Meta{Total: list.Total})
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func parseReviewID(c *gin.Context) (uuid.UUID, bool) {
	reviewID, err := uuid.Parse(c.Param("reviewId"))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID")
		return uuid.Nil, false
	}
	return reviewID, true
}

// respondReviewError writes the envelope for err. Server-side failures get
// a generic message; the cause only goes to the log.
func respondReviewError(c *gin.Context, err error) {
	status, code := mapReviewError(err)

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("code", code).
			Msg("review request failed")
		response.ErrorResponse(c, status, code, "Internal server error")
		return
	}

	var reviewErr *model.ReviewError
	errors.As(err, &reviewErr)

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.ErrorWithDetails(c, status, code, reviewErr.Message, fieldErrs)
		return
	}

	response.ErrorResponse(c, status, code, reviewErr.Message)
}

// mapReviewError maps review error to HTTP status code
func mapReviewError(err error) (int, string) {
	var reviewErr *model.ReviewError
	if !errors.As(err, &reviewErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch reviewErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest, reviewErr.Code
	case model.ErrCodeReviewNotFound, model.ErrCodeBookNotFound:
		return http.StatusNotFound, reviewErr.Code
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden, reviewErr.Code
	case model.ErrCodeConflict:
		return http.StatusConflict, reviewErr.Code
	case model.ErrCodeTransactionFailure, model.ErrCodeRetryExhausted:
		return http.StatusInternalServerError, reviewErr.Code
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
