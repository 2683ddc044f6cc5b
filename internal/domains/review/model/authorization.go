package model

import "bookreview-backend/internal/shared"

// Action is something a requester wants to do to an existing review.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize is the single capability check for review mutations.
// Owners may update and delete; admins may only delete.
func Authorize(action Action, requesterID, requesterRole, ownerID string) error {
	isOwner := requesterID != "" && requesterID == ownerID

	switch action {
	case ActionUpdate:
		if isOwner {
			return nil
		}
		return NewPermissionDeniedError("Only the author can edit this review")
	case ActionDelete:
		if isOwner || requesterRole == shared.RoleAdmin {
			return nil
		}
		return NewPermissionDeniedError("Only the author or an admin can delete this review")
	default:
		return NewPermissionDeniedError("Unknown review action")
	}
}
