package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/Dias221467/task-reminders/pkg/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeServiceError maps service errors to status codes; anything unknown is logged and hidden.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrConflict):
		http.Error(w, "Conflict", http.StatusConflict)
	default:
		logger.Log.WithError(err).Error(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// currentUserID returns the authenticated user's ID, writing 401 when there is none.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil || claims.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
