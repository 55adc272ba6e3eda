package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/task-reminders/internal/config"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a Mongo client, pings it and returns the configured database.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// EnsureIndexes creates the indexes the reminder engine depends on.
// The unique user_id index is what keeps preferences at one document per user.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		repository.CollectionPreferences: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		repository.CollectionReminders: {
			{Keys: bson.D{{Key: "is_sent", Value: 1}, {Key: "scheduled_time", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "notification_type", Value: 1}, {Key: "sent_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "task_id", Value: 1}}},
		},
		repository.CollectionBrowserNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
