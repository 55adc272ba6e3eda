package repository

import "go.mongodb.org/mongo-driver/bson"

// Collection names shared by the Mongo repositories and the index bootstrap.
const (
	CollectionPreferences          = "notification_preferences"
	CollectionReminders            = "task_reminders"
	CollectionBrowserNotifications = "browser_notifications"
	CollectionTasks                = "tasks"
	CollectionProjects             = "projects"
	CollectionUsers                = "users"
)

// afterCursor matches rows ordered strictly after c on (field, _id).
func afterCursor(field string, c *PageCursor) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{field: bson.M{"$gt": c.At}},
		bson.M{field: c.At, "_id": bson.M{"$gt": c.ID}},
	}}
}
