package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type notificationInbox interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

// NotificationService exposes a user's in-app inbox.
type NotificationService struct {
	repo notificationInbox
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationInbox) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	items, total, err := s.repo.ListForUser(ctx, actor.UserID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, total, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.JWTClaims, id int64) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.MarkRead(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}
