package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (user_id, type, title, message, related_id, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := conn(ctx, r.db).GetContext(ctx, &n.ID, query,
		n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.IsRead, n.CreatedAt); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForUser returns the inbox of a user, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	where := "user_id = $1"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}
	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM notifications WHERE "+where, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, user_id, type, title, message, related_id, is_read, created_at
	FROM notifications WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`, where, limit, offset)
	var items []models.Notification
	if err := q.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags a notification owned by userID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notification update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
