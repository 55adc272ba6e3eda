package models

import "time"

// TaskSnapshot is the subset of a task the reminder engine reads. Tasks are owned elsewhere.
type TaskSnapshot struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Name      string     `bson:"name" json:"name"`
	ProjectID string     `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Priority  string     `bson:"priority,omitempty" json:"priority,omitempty"`
	DueDate   *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Completed bool       `bson:"completed" json:"completed"`
}

// ProjectSnapshot is the subset of a project the reminder engine reads.
type ProjectSnapshot struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Priorities as stored on tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)
