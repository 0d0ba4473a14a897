package models

import "time"

// NotificationType identifies user-facing notification templates.
type NotificationType string

const (
	NotificationUnlockSubmitted NotificationType = "UNLOCK_REQUEST_SUBMITTED"
	NotificationUnlockReceived  NotificationType = "UNLOCK_REQUEST_RECEIVED"
	NotificationUnlockAlert     NotificationType = "UNLOCK_REQUEST_ALERT"
	NotificationUnlockApproved  NotificationType = "UNLOCK_REQUEST_APPROVED"
	NotificationUnlockDenied    NotificationType = "UNLOCK_REQUEST_DENIED"
)

// Notification is persisted for display in the user's inbox.
type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	RelatedID *int64           `db:"related_id" json:"relatedId,omitempty"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
