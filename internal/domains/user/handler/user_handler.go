package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/domains/user"
	"bookreview-backend/internal/shared/middleware"
	"bookreview-backend/internal/shared/response"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// PutMe registers or refreshes the caller's profile. It runs behind
// token-only auth since the profile may not exist yet.
// PUT /api/v1/users/me
func (h *UserHandler) PutMe(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req user.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	profile, created, err := h.userService.UpsertProfile(c.Request.Context(), claims.UID, claims.Email, req)
	if err != nil {
		respondUserError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, profile)
}

// PatchMe
// PATCH /api/v1/users/me
func (h *UserHandler) PatchMe(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), principal.UserID, req)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// AdminUpdateRole
// PATCH /api/v1/admin/users/:uid/role
func (h *UserHandler) AdminUpdateRole(c *gin.Context) {
	var req user.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Malformed request body")
		return
	}

	profile, err := h.userService.UpdateRole(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrValidation):
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", fieldErrs)
			return
		}
		response.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, user.ErrUserNotFound):
		response.ErrorResponse(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Msg("user request failed")
		response.InternalServerError(c)
	}
}
