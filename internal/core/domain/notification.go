package domain

import "time"

// NotificationVariant selects how the UI renders a notification.
type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a short user-facing message emitted after a session
// operation (the toast shown by the UI).
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
	CreatedAt   time.Time           `json:"createdAt"`
}
