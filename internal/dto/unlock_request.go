package dto

import "github.com/noah-isme/negative-records-api/internal/models"

// CreateUnlockRequest payload for petitioning a record lock.
type CreateUnlockRequest struct {
	RecordID int64  `json:"recordId" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"max=1000"`
}

// ReviewUnlockRequest captures the reviewer decision.
type ReviewUnlockRequest struct {
	Status       string `json:"status" validate:"required"`
	DenialReason string `json:"denialReason" validate:"max=1000"`
}

// UnlockRequestQuery mirrors listing filters.
type UnlockRequestQuery struct {
	Scope  string
	Status []models.UnlockRequestStatus
	Limit  int
	Offset int
}

// Unlock request listing scopes.
const (
	UnlockScopeMine     = "mine"
	UnlockScopeIncoming = "incoming"
)
