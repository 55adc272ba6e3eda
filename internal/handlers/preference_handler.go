package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/services"
)

type PreferenceHandler struct {
	Service *services.PreferenceService
}

func NewPreferenceHandler(service *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Service: service}
}

// GET /notifications/preferences
func (h *PreferenceHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	pref, err := h.Service.GetOrCreateDefaults(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// PUT /notifications/preferences
func (h *PreferenceHandler) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var upd models.NotificationPreferenceUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	pref, err := h.Service.Update(r.Context(), userID, upd)
	if err != nil {
		writeServiceError(w, err, "Failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}
