package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository reads the task and project collections. It never writes to them.
type TaskRepository struct {
	tasks    *mongo.Collection
	projects *mongo.Collection
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		tasks:    db.Collection(CollectionTasks),
		projects: db.Collection(CollectionProjects),
	}
}

// GetTask fetches a task by its ID
func (r *TaskRepository) GetTask(ctx context.Context, taskID string) (*models.TaskSnapshot, error) {
	var task models.TaskSnapshot
	if err := r.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		return nil, wrapErr("find task", err)
	}
	return &task, nil
}

// GetProject fetches a project by its ID
func (r *TaskRepository) GetProject(ctx context.Context, projectID string) (*models.ProjectSnapshot, error) {
	var project models.ProjectSnapshot
	if err := r.projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		return nil, wrapErr("find project", err)
	}
	return &project, nil
}

// ListOverdue returns one page of incomplete tasks whose due date is before q.Now,
// ordered by (due_date, _id).
func (r *TaskRepository) ListOverdue(ctx context.Context, q OverdueQuery) ([]models.TaskSnapshot, error) {
	filter := bson.M{
		"completed": false,
		"due_date":  bson.M{"$lt": q.Now},
	}
	if q.After != nil {
		filter["$and"] = bson.A{afterCursor("due_date", q.After)}
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "due_date", Value: 1},
		{Key: "_id", Value: 1},
	})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch overdue tasks")
		return nil, wrapErr("find overdue tasks", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.TaskSnapshot
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	logger.Log.WithField("count", len(tasks)).Debug("Overdue tasks fetched")
	return tasks, nil
}
