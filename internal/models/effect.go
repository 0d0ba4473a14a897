package models

// EffectKind identifies an outbound side effect produced by a core operation.
type EffectKind string

const (
	EffectNotify EffectKind = "notify"
	EffectAudit  EffectKind = "audit"
)

// NotifyAudience selects who receives a notification effect.
type NotifyAudience string

const (
	AudienceUser   NotifyAudience = "user"
	AudienceAdmins NotifyAudience = "admins"
)

// Effect is executed by the caller after the producing transaction commits.
// Failures while executing effects never roll back the operation.
type Effect struct {
	Kind         EffectKind
	Notification *NotificationEffect
	Audit        *AuditLog
}

// NotificationEffect describes a notification to persist and push.
type NotificationEffect struct {
	Audience  NotifyAudience
	UserID    int64
	Type      NotificationType
	Title     string
	Message   string
	RelatedID *int64
}

// NotifyUser builds a notification effect for a single user.
func NotifyUser(userID int64, kind NotificationType, title, message string, relatedID int64) Effect {
	return Effect{
		Kind: EffectNotify,
		Notification: &NotificationEffect{
			Audience:  AudienceUser,
			UserID:    userID,
			Type:      kind,
			Title:     title,
			Message:   message,
			RelatedID: &relatedID,
		},
	}
}

// NotifyAdmins builds a broadcast effect for all approved administrators.
func NotifyAdmins(kind NotificationType, title, message string, relatedID int64) Effect {
	return Effect{
		Kind: EffectNotify,
		Notification: &NotificationEffect{
			Audience:  AudienceAdmins,
			Type:      kind,
			Title:     title,
			Message:   message,
			RelatedID: &relatedID,
		},
	}
}

// AuditEffect wraps an audit log entry.
func AuditEffect(log *AuditLog) Effect {
	return Effect{Kind: EffectAudit, Audit: log}
}
