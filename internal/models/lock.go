package models

import "time"

// LockAction enumerates lock history transitions.
type LockAction string

const (
	LockActionCreated     LockAction = "LOCK_CREATED"
	LockActionTransferred LockAction = "LOCK_TRANSFERRED"
)

// RecordLock is the single active claim on a negative record.
type RecordLock struct {
	ID       int64     `db:"id" json:"id"`
	RecordID int64     `db:"record_id" json:"recordId"`
	LockedBy int64     `db:"locked_by" json:"lockedBy"`
	LockedAt time.Time `db:"locked_at" json:"lockedAt"`
}

// HeldBy reports whether the lock belongs to the given user.
func (l *RecordLock) HeldBy(userID int64) bool {
	return l != nil && l.LockedBy == userID
}

// LockHistory is an append-only entry of lock ownership transitions.
type LockHistory struct {
	ID        int64      `db:"id" json:"id"`
	RecordID  int64      `db:"record_id" json:"recordId"`
	LockedBy  int64      `db:"locked_by" json:"lockedBy"`
	Action    LockAction `db:"action" json:"action"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
