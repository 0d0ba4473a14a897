package models

import (
	"strings"
	"time"
)

// UnlockRequestStatus captures workflow states for unlock requests.
type UnlockRequestStatus string

const (
	UnlockStatusPending  UnlockRequestStatus = "pending"
	UnlockStatusApproved UnlockRequestStatus = "approved"
	UnlockStatusDenied   UnlockRequestStatus = "denied"
)

// ParseUnlockStatus accepts case-insensitive status names.
func ParseUnlockStatus(raw string) (UnlockRequestStatus, bool) {
	switch UnlockRequestStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case UnlockStatusPending:
		return UnlockStatusPending, true
	case UnlockStatusApproved:
		return UnlockStatusApproved, true
	case UnlockStatusDenied:
		return UnlockStatusDenied, true
	default:
		return "", false
	}
}

// UnlockRequest is a petition by a non-holder to receive the lock on a record.
type UnlockRequest struct {
	ID           int64               `db:"id" json:"id"`
	RequestedBy  int64               `db:"requested_by" json:"requestedBy"`
	RecordID     int64               `db:"record_id" json:"recordId"`
	Status       UnlockRequestStatus `db:"status" json:"status"`
	Reason       string              `db:"reason" json:"reason"`
	DenialReason *string             `db:"denial_reason" json:"denialReason,omitempty"`
	ReviewedBy   *int64              `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
}

// UnlockRequestFilter constrains listing queries.
type UnlockRequestFilter struct {
	Status      []UnlockRequestStatus
	RequestedBy int64
	// LockedBy restricts to requests against records currently held by this user.
	LockedBy int64
	RecordID int64
	Limit    int
	Offset   int
}
