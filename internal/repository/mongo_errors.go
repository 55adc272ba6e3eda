package repository

import (
	"errors"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"go.mongodb.org/mongo-driver/mongo"
)

// wrapErr maps driver errors onto the app sentinels so callers can use errors.Is.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
