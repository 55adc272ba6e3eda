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

// ReminderRepository stores task reminders in the "task_reminders" collection.
// Documents are never deleted; they form the delivery audit trail.
type ReminderRepository struct {
	collection *mongo.Collection
}

// NewReminderRepository creates a new instance of ReminderRepository
func NewReminderRepository(db *mongo.Database) *ReminderRepository {
	return &ReminderRepository{
		collection: db.Collection(CollectionReminders),
	}
}

// Insert stores a new reminder. A reminder with the same ID yields apperrors.ErrConflict.
func (r *ReminderRepository) Insert(ctx context.Context, reminder *models.TaskReminder) error {
	_, err := r.collection.InsertOne(ctx, reminder)
	if err != nil {
		return wrapErr("insert reminder", err)
	}
	return nil
}

// FindByID fetches a reminder by its ID
func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*models.TaskReminder, error) {
	var reminder models.TaskReminder
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reminder); err != nil {
		return nil, wrapErr("find reminder", err)
	}
	return &reminder, nil
}

// FindDue returns unsent reminders whose scheduled time has passed and whose retry delay,
// if any, has elapsed. Abandoned reminders and live claims are excluded.
// Results are ordered by (scheduled_time, _id) and start after q.After when set.
func (r *ReminderRepository) FindDue(ctx context.Context, q DueQuery) ([]models.TaskReminder, error) {
	and := bson.A{
		claimableFilter(q.ClaimExpiredBefore),
		bson.M{"$or": bson.A{
			bson.M{"next_retry": nil},
			bson.M{"next_retry": bson.M{"$lte": q.Now}},
		}},
	}
	if q.After != nil {
		and = append(and, afterCursor("scheduled_time", q.After))
	}
	filter := bson.M{
		"is_sent":        false,
		"scheduled_time": bson.M{"$lte": q.Now},
		"$and":           and,
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "scheduled_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("find due reminders", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.TaskReminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

// FindByTask returns every reminder ever scheduled for a task, oldest first.
func (r *ReminderRepository) FindByTask(ctx context.Context, userID, taskID string) ([]models.TaskReminder, error) {
	filter := bson.M{"user_id": userID, "task_id": taskID}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("find task reminders", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.TaskReminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

// HasActiveOverdue implements ReminderStore.
func (r *ReminderRepository) HasActiveOverdue(ctx context.Context, taskID string, sentSince time.Time) (bool, error) {
	filter := bson.M{
		"task_id":           taskID,
		"notification_type": models.NotificationTaskOverdue,
		"$or": bson.A{
			bson.M{"sent_at": bson.M{"$gte": sentSince}},
			bson.M{
				"is_sent": false,
				"status": bson.M{"$in": bson.A{
					models.StatusPending, models.StatusClaimed, models.StatusRetryScheduled,
				}},
			},
		},
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapErr("count overdue reminders", err)
	}
	return n > 0, nil
}

// Claim implements ReminderStore with a single conditional update.
func (r *ReminderRepository) Claim(ctx context.Context, id string, now, claimExpiredBefore time.Time) (bool, error) {
	filter := bson.M{
		"_id":     id,
		"is_sent": false,
		"$and":    bson.A{claimableFilter(claimExpiredBefore)},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusClaimed,
		"claimed_at": now,
		"updated_at": now,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, wrapErr("claim reminder", err)
	}
	return res.MatchedCount == 1, nil
}

// RecordDelivered implements ReminderStore.
func (r *ReminderRepository) RecordDelivered(ctx context.Context, id string, channels []models.Channel, now time.Time) error {
	if len(channels) == 0 {
		return nil
	}
	update := bson.M{
		"$addToSet": bson.M{"delivered_channels": bson.M{"$each": channels}},
		"$set":      bson.M{"updated_at": now},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusClaimed}, update)
	if err != nil {
		return wrapErr("record delivered channels", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder %s record delivered: %w", id, apperrors.ErrInvalidTransition)
	}
	return nil
}

// MarkSent moves a claimed reminder to sent.
func (r *ReminderRepository) MarkSent(ctx context.Context, id string, now time.Time) error {
	return r.transition(ctx, id, models.StatusSent, bson.M{
		"is_sent": true,
		"sent_at": now,
	}, bson.M{"next_retry": ""}, now)
}

// ScheduleRetry moves a claimed reminder to retry_scheduled.
func (r *ReminderRepository) ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, lastErr string, now time.Time) error {
	return r.transition(ctx, id, models.StatusRetryScheduled, bson.M{
		"retry_count": retryCount,
		"next_retry":  nextRetry,
		"last_error":  lastErr,
	}, bson.M{"claimed_at": ""}, now)
}

// Abandon moves a claimed reminder to abandoned.
func (r *ReminderRepository) Abandon(ctx context.Context, id string, lastErr string, now time.Time) error {
	return r.transition(ctx, id, models.StatusAbandoned, bson.M{
		"last_error": lastErr,
	}, bson.M{"next_retry": ""}, now)
}

func (r *ReminderRepository) transition(ctx context.Context, id string, to models.ReminderStatus, set, unset bson.M, now time.Time) error {
	set["status"] = to
	set["updated_at"] = now
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusClaimed}, update)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"reminder_id": id,
			"status":      to,
		}).Error("Failed to update reminder status")
		return wrapErr("update reminder status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder %s to %s: %w", id, to, apperrors.ErrInvalidTransition)
	}
	return nil
}

func claimableFilter(claimExpiredBefore time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"status": bson.M{"$in": models.ClaimableStatuses}},
		bson.M{"status": models.StatusClaimed, "claimed_at": bson.M{"$lt": claimExpiredBefore}},
	}}
}
