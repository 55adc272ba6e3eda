package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PreferenceRepository stores notification preferences in the "notification_preferences" collection.
type PreferenceRepository struct {
	collection *mongo.Collection
}

// NewPreferenceRepository creates a new instance of PreferenceRepository
func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{
		collection: db.Collection(CollectionPreferences),
	}
}

// FindByUser returns the user's preferences or apperrors.ErrNotFound.
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&pref)
	if err != nil {
		return nil, wrapErr("find preferences", err)
	}
	return &pref, nil
}

// Insert stores a new preference document. The unique user_id index turns a second insert into ErrConflict.
func (r *PreferenceRepository) Insert(ctx context.Context, pref *models.NotificationPreference) error {
	_, err := r.collection.InsertOne(ctx, pref)
	if err != nil {
		logrus.WithError(err).WithField("user_id", pref.UserID).Error("Failed to insert notification preferences")
		return wrapErr("insert preferences", err)
	}
	return nil
}

// Replace overwrites the user's preference document.
func (r *PreferenceRepository) Replace(ctx context.Context, pref *models.NotificationPreference) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": pref.UserID}, pref)
	if err != nil {
		logrus.WithError(err).WithField("user_id", pref.UserID).Error("Failed to update notification preferences")
		return wrapErr("replace preferences", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace preferences: %w", apperrors.ErrNotFound)
	}
	return nil
}
