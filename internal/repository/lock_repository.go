package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

// LockRepository persists record locks and their ownership history.
type LockRepository struct {
	db *sqlx.DB
}

// NewLockRepository constructs the repository.
func NewLockRepository(db *sqlx.DB) *LockRepository {
	return &LockRepository{db: db}
}

// Claim inserts a lock for userID unless the record is already locked. The
// returned lock is the one in force; created reports whether it was inserted.
func (r *LockRepository) Claim(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, bool, error) {
	const insert = `INSERT INTO record_locks (record_id, locked_by, locked_at) VALUES ($1, $2, $3)
	ON CONFLICT (record_id) DO NOTHING
	RETURNING id, record_id, locked_by, locked_at`
	q := conn(ctx, r.db)
	var lock models.RecordLock
	err := q.GetContext(ctx, &lock, insert, recordID, userID, at)
	if err == nil {
		return &lock, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("claim record lock: %w", err)
	}

	existing, err := r.FindByRecord(ctx, recordID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindByRecord returns the lock currently held on the record.
func (r *LockRepository) FindByRecord(ctx context.Context, recordID int64) (*models.RecordLock, error) {
	const query = `SELECT id, record_id, locked_by, locked_at FROM record_locks WHERE record_id = $1`
	var lock models.RecordLock
	if err := conn(ctx, r.db).GetContext(ctx, &lock, query, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record lock: %w", err)
	}
	return &lock, nil
}

// FindByRecordForUpdate row-locks the record and its lock until the surrounding
// transaction ends, so reviews on one record run one at a time. It returns
// sql.ErrNoRows when the record is unlocked; the record row stays locked.
func (r *LockRepository) FindByRecordForUpdate(ctx context.Context, recordID int64) (*models.RecordLock, error) {
	q := conn(ctx, r.db)
	var id int64
	if err := q.GetContext(ctx, &id, `SELECT id FROM negative_records WHERE id = $1 FOR UPDATE`, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock negative record: %w", err)
	}

	const query = `SELECT id, record_id, locked_by, locked_at FROM record_locks WHERE record_id = $1 FOR UPDATE`
	var lock models.RecordLock
	if err := q.GetContext(ctx, &lock, query, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock record lock: %w", err)
	}
	return &lock, nil
}

// Transfer reassigns an existing lock. It returns sql.ErrNoRows when the record is unlocked.
func (r *LockRepository) Transfer(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, error) {
	const query = `UPDATE record_locks SET locked_by = $2, locked_at = $3 WHERE record_id = $1
	RETURNING id, record_id, locked_by, locked_at`
	var lock models.RecordLock
	if err := conn(ctx, r.db).GetContext(ctx, &lock, query, recordID, userID, at); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("transfer record lock: %w", err)
	}
	return &lock, nil
}

// AppendHistory records a lock ownership transition.
func (r *LockRepository) AppendHistory(ctx context.Context, entry *models.LockHistory) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lock_history (record_id, locked_by, action, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := conn(ctx, r.db).GetContext(ctx, &entry.ID, query, entry.RecordID, entry.LockedBy, entry.Action, entry.CreatedAt); err != nil {
		return fmt.Errorf("append lock history: %w", err)
	}
	return nil
}

// ListHistory returns the ownership trail of a record, oldest first.
func (r *LockRepository) ListHistory(ctx context.Context, recordID int64) ([]models.LockHistory, error) {
	const query = `SELECT id, record_id, locked_by, action, created_at FROM lock_history WHERE record_id = $1 ORDER BY id`
	var history []models.LockHistory
	if err := conn(ctx, r.db).SelectContext(ctx, &history, query, recordID); err != nil {
		return nil, fmt.Errorf("list lock history: %w", err)
	}
	return history, nil
}
