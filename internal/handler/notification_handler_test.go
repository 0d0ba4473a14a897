package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type notificationServiceMock struct {
	unread  bool
	limit   int
	markErr error
	markID  int64
}

func (m *notificationServiceMock) List(ctx context.Context, actor *models.JWTClaims, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	m.unread, m.limit = unreadOnly, limit
	return []models.Notification{{ID: 1, Title: "Unlock request approved"}}, 1, nil
}

func (m *notificationServiceMock) MarkRead(ctx context.Context, actor *models.JWTClaims, id int64) error {
	m.markID = id
	return m.markErr
}

func TestNotificationHandlerList(t *testing.T) {
	svc := &notificationServiceMock{}
	h := NewNotificationHandler(svc)

	c, w := newTestContext(http.MethodGet, "/notifications?unread=true&page_size=500", "", affiliateClaims)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.unread)
	assert.Equal(t, maxPageSize, svc.limit)
	assert.Contains(t, w.Body.String(), "Unlock request approved")
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	svc := &notificationServiceMock{}
	h := NewNotificationHandler(svc)

	c, w := newTestContext(http.MethodPatch, "/notifications/5/read", "", affiliateClaims, gin.Param{Key: "id", Value: "5"})
	h.MarkRead(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(5), svc.markID)

	svc.markErr = appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	c, w = newTestContext(http.MethodPatch, "/notifications/5/read", "", affiliateClaims, gin.Param{Key: "id", Value: "5"})
	h.MarkRead(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
