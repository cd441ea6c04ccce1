package entity

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationTypePayment      NotificationType = "payment"
	NotificationTypeStatusUpdate NotificationType = "status_update"
)

type Notification struct {
	BaseSimple
	UserID  uuid.UUID        `db:"user_id"`
	Type    NotificationType `db:"type"`
	Title   string           `db:"title"`
	Message string           `db:"message"`
	IsRead  bool             `db:"is_read"`
}
