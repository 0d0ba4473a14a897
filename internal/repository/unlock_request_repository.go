package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

const unlockRequestColumns = `id, requested_by, record_id, status, reason, denial_reason, reviewed_by, reviewed_at, created_at`

// UnlockRequestRepository persists unlock request workflow data.
type UnlockRequestRepository struct {
	db *sqlx.DB
}

// NewUnlockRequestRepository constructs the repository.
func NewUnlockRequestRepository(db *sqlx.DB) *UnlockRequestRepository {
	return &UnlockRequestRepository{db: db}
}

// Create inserts a pending request. A concurrent duplicate surfaces as a unique violation.
func (r *UnlockRequestRepository) Create(ctx context.Context, request *models.UnlockRequest) error {
	if request.Status == "" {
		request.Status = models.UnlockStatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO unlock_requests (requested_by, record_id, status, reason, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := conn(ctx, r.db).GetContext(ctx, &request.ID, query,
		request.RequestedBy, request.RecordID, request.Status, request.Reason, request.CreatedAt); err != nil {
		return fmt.Errorf("create unlock request: %w", err)
	}
	return nil
}

// HasPending reports whether the user already has a pending request for the record.
func (r *UnlockRequestRepository) HasPending(ctx context.Context, requestedBy, recordID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM unlock_requests WHERE requested_by = $1 AND record_id = $2 AND status = 'pending')`
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, requestedBy, recordID); err != nil {
		return false, fmt.Errorf("check pending unlock request: %w", err)
	}
	return exists, nil
}

// PendingRecordIDs returns the subset of recordIDs the user has a pending request for.
func (r *UnlockRequestRepository) PendingRecordIDs(ctx context.Context, requestedBy int64, recordIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(recordIDs))
	if len(recordIDs) == 0 {
		return result, nil
	}
	args := make([]interface{}, 0, len(recordIDs)+1)
	args = append(args, requestedBy)
	placeholders := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`SELECT record_id FROM unlock_requests WHERE requested_by = $1 AND status = 'pending' AND record_id IN (%s)`,
		strings.Join(placeholders, ","))
	var ids []int64
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list pending unlock requests: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// GetByID fetches a request by identifier.
func (r *UnlockRequestRepository) GetByID(ctx context.Context, id int64) (*models.UnlockRequest, error) {
	query := `SELECT ` + unlockRequestColumns + ` FROM unlock_requests WHERE id = $1`
	var request models.UnlockRequest
	if err := conn(ctx, r.db).GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get unlock request: %w", err)
	}
	return &request, nil
}

// ResolveUnlockParams groups the columns written by a review.
type ResolveUnlockParams struct {
	ID           int64
	Status       models.UnlockRequestStatus
	ReviewedBy   int64
	ReviewedAt   time.Time
	DenialReason *string
}

// Resolve moves a pending request to its final status. It returns sql.ErrNoRows
// when the request is no longer pending.
func (r *UnlockRequestRepository) Resolve(ctx context.Context, params ResolveUnlockParams) (*models.UnlockRequest, error) {
	query := fmt.Sprintf(`UPDATE unlock_requests SET status = $2, reviewed_by = $3, reviewed_at = $4, denial_reason = $5
	WHERE id = $1 AND status = '%s' RETURNING %s`, models.UnlockStatusPending, unlockRequestColumns)
	var request models.UnlockRequest
	if err := conn(ctx, r.db).GetContext(ctx, &request, query,
		params.ID, params.Status, params.ReviewedBy, params.ReviewedAt, params.DenialReason); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve unlock request: %w", err)
	}
	return &request, nil
}

// DenyOtherPending denies every pending request for the record except exceptID.
func (r *UnlockRequestRepository) DenyOtherPending(ctx context.Context, recordID, exceptID, reviewedBy int64, at time.Time) ([]models.UnlockRequest, error) {
	query := fmt.Sprintf(`UPDATE unlock_requests SET status = '%s', reviewed_by = $3, reviewed_at = $4
	WHERE record_id = $1 AND id <> $2 AND status = '%s' RETURNING %s`,
		models.UnlockStatusDenied, models.UnlockStatusPending, unlockRequestColumns)
	var denied []models.UnlockRequest
	if err := conn(ctx, r.db).SelectContext(ctx, &denied, query, recordID, exceptID, reviewedBy, at); err != nil {
		return nil, fmt.Errorf("cascade deny unlock requests: %w", err)
	}
	return denied, nil
}

// List returns requests matching the filter, newest first.
func (r *UnlockRequestRepository) List(ctx context.Context, filter models.UnlockRequestFilter) ([]models.UnlockRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(`SELECT ur.id, ur.requested_by, ur.record_id, ur.status, ur.reason, ur.denial_reason,
       ur.reviewed_by, ur.reviewed_at, ur.created_at FROM unlock_requests ur`)

	conditions := make([]string, 0, 4)
	if filter.LockedBy != 0 {
		builder.WriteString(" JOIN record_locks rl ON rl.record_id = ur.record_id")
		args = append(args, filter.LockedBy)
		conditions = append(conditions, fmt.Sprintf("rl.locked_by = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("ur.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.RequestedBy != 0 {
		args = append(args, filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("ur.requested_by = $%d", len(args)))
	}
	if filter.RecordID != 0 {
		args = append(args, filter.RecordID)
		conditions = append(conditions, fmt.Sprintf("ur.record_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY ur.created_at DESC, ur.id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.UnlockRequest
	if err := conn(ctx, r.db).SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list unlock requests: %w", err)
	}
	return requests, nil
}
