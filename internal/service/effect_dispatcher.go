package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/pkg/jobs"
	"github.com/noah-isme/negative-records-api/pkg/notify"
)

type notificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

type adminDirectory interface {
	ListApprovedAdminIDs(ctx context.Context) ([]int64, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// RequestMeta carries client details stamped onto audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// EffectDispatcher performs the side effects returned by core operations once
// their transaction has committed. Failures are logged and never surface to the caller.
type EffectDispatcher struct {
	notifications notificationWriter
	admins        adminDirectory
	audit         auditLogger
	push          jobEnqueuer
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewEffectDispatcher constructs a dispatcher. push may be nil to disable external delivery.
func NewEffectDispatcher(notifications notificationWriter, admins adminDirectory, audit auditLogger, push jobEnqueuer, metrics *MetricsService, logger *zap.Logger) *EffectDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EffectDispatcher{
		notifications: notifications,
		admins:        admins,
		audit:         audit,
		push:          push,
		metrics:       metrics,
		logger:        logger,
	}
}

// Dispatch executes effects in order.
func (d *EffectDispatcher) Dispatch(ctx context.Context, meta RequestMeta, effects []models.Effect) {
	if d == nil || len(effects) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, effect := range effects {
		var err error
		switch effect.Kind {
		case models.EffectNotify:
			err = d.notify(ctx, effect.Notification)
		case models.EffectAudit:
			err = d.writeAudit(ctx, meta, effect.Audit)
		default:
			err = fmt.Errorf("unknown effect kind %q", effect.Kind)
		}
		if err != nil {
			d.metrics.RecordEffectFailure(effect.Kind)
			d.logger.Warn("effect failed", zap.String("kind", string(effect.Kind)), zap.Error(err))
		}
	}
}

func (d *EffectDispatcher) notify(ctx context.Context, n *models.NotificationEffect) error {
	if n == nil || d.notifications == nil {
		return nil
	}
	recipients := []int64{n.UserID}
	if n.Audience == models.AudienceAdmins {
		if d.admins == nil {
			return nil
		}
		ids, err := d.admins.ListApprovedAdminIDs(ctx)
		if err != nil {
			return fmt.Errorf("resolve admin recipients: %w", err)
		}
		recipients = ids
	}

	var firstErr error
	for _, userID := range recipients {
		notification := &models.Notification{
			UserID:    userID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			RelatedID: n.RelatedID,
		}
		if err := d.notifications.Create(ctx, notification); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("store notification for user %d: %w", userID, err)
			}
			continue
		}
		d.enqueuePush(notification)
	}
	return firstErr
}

func (d *EffectDispatcher) enqueuePush(n *models.Notification) {
	if d.push == nil {
		return
	}
	job := jobs.Job{
		ID:      "notification-" + strconv.FormatInt(n.ID, 10),
		Type:    notify.JobType,
		Payload: notify.Message{UserID: n.UserID, Title: n.Title, Body: n.Message},
	}
	if err := d.push.Enqueue(job); err != nil {
		d.logger.Warn("push enqueue failed", zap.Int64("notification_id", n.ID), zap.Error(err))
	}
}

func (d *EffectDispatcher) writeAudit(ctx context.Context, meta RequestMeta, log *models.AuditLog) error {
	if log == nil || d.audit == nil {
		return nil
	}
	if log.IPAddress == "" {
		log.IPAddress = meta.IPAddress
	}
	if log.UserAgent == "" {
		log.UserAgent = meta.UserAgent
	}
	return d.audit.CreateAuditLog(ctx, log)
}

func lockAudit(userID int64, action string, recordID int64) *models.AuditLog {
	return &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditModuleRecords,
		ResourceID: idString(recordID),
	}
}

func transferAudit(reviewerID, recordID, fromUser, toUser int64) *models.AuditLog {
	log := lockAudit(reviewerID, models.AuditActionLockTransfer, recordID)
	log.NewValues = mustJSON(map[string]int64{"lockedBy": toUser})
	if fromUser != 0 {
		log.OldValues = mustJSON(map[string]int64{"lockedBy": fromUser})
	}
	return log
}

func requestAudit(userID int64, action string, request *models.UnlockRequest) *models.AuditLog {
	return &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditModuleUnlockRequests,
		ResourceID: idString(request.ID),
		NewValues:  mustJSON(request),
	}
}

func creditAudit(userID int64, action string, clientID int64, values interface{}) *models.AuditLog {
	return &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditModuleCredits,
		ResourceID: idString(clientID),
		NewValues:  mustJSON(values),
	}
}

func idString(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}

func mustJSON(v interface{}) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return payload
}
