package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, actor *models.JWTClaims, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, actor *models.JWTClaims, id int64) error
}

// NotificationHandler exposes the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	page, size := pageParams(c)
	items, total, err := h.service.List(c.Request.Context(), claimsFromContext(c), unread, size, (page-1)*size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
