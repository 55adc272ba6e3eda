package models

import "time"

// BrowserNotificationType is the only in-app notification kind produced by reminder dispatch.
const BrowserNotificationType = "task_notification"

// BrowserNotification is an in-app notification the frontend polls for.
type BrowserNotification struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Type        string     `bson:"type" json:"type"`
	Title       string     `bson:"title" json:"title"`
	Message     string     `bson:"message" json:"message"`
	TaskID      string     `bson:"task_id,omitempty" json:"task_id,omitempty"`
	TaskName    string     `bson:"task_name,omitempty" json:"task_name,omitempty"`
	ProjectName string     `bson:"project_name,omitempty" json:"project_name,omitempty"`
	Priority    string     `bson:"priority,omitempty" json:"priority,omitempty"`
	Read        bool       `bson:"read" json:"read"`
	ReadAt      *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Clicked     bool       `bson:"clicked" json:"clicked"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// BrowserNotificationID derives the in-app record ID from the reminder that produced it,
// so a retried reminder never produces a second browser record.
func BrowserNotificationID(reminderID string) string {
	return "browser_" + reminderID
}
