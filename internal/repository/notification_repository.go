package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository stores in-app browser notifications.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(CollectionBrowserNotifications),
	}
}

// CreateIfAbsent inserts the notification unless one with the same ID exists.
// An existing document keeps its read, clicked and created_at fields.
func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, notif *models.BrowserNotification) error {
	_, err := r.collection.InsertOne(ctx, notif)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		logrus.WithError(err).WithField("notification_id", notif.ID).Error("Failed to store browser notification")
		return wrapErr("create notification", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.BrowserNotification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("fetch notifications", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.BrowserNotification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead sets notification's Read to true
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string, now time.Time) error {
	return r.updateOne(ctx, userID, id, bson.M{"read": true, "read_at": now})
}

// MarkClicked records that the user followed the notification.
func (r *NotificationRepository) MarkClicked(ctx context.Context, userID, id string) error {
	return r.updateOne(ctx, userID, id, bson.M{"clicked": true})
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": now}},
	)
	if err != nil {
		return 0, wrapErr("mark all notifications read", err)
	}
	return res.ModifiedCount, nil
}

// Delete deletes a notification
func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return wrapErr("delete notification", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete notification %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every notification of the user
func (r *NotificationRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, wrapErr("clear notifications", err)
	}
	logrus.WithField("user_id", userID).Infof("Deleted %d notifications", res.DeletedCount)
	return res.DeletedCount, nil
}

func (r *NotificationRepository) updateOne(ctx context.Context, userID, id string, set bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set})
	if err != nil {
		return wrapErr("update notification", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
