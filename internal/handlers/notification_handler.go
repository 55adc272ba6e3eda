package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/task-reminders/internal/services"
	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Service *services.BrowserNotificationService
}

func NewNotificationHandler(service *services.BrowserNotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications?unread_only=true
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid unread_only value", http.StatusBadRequest)
			return
		}
		unreadOnly = v
	}

	notifications, err := h.Service.List(r.Context(), userID, unreadOnly)
	if err != nil {
		writeServiceError(w, err, "Failed to get notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// PUT /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.Service.MarkRead(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, "Failed to mark as read")
		return
	}
	writeMessage(w, "Notification marked as read")
}

// PUT /notifications/{id}/clicked
func (h *NotificationHandler) MarkClickedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.Service.MarkClicked(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, "Failed to mark as clicked")
		return
	}
	writeMessage(w, "Notification marked as clicked")
}

// PUT /notifications/mark-all-read
func (h *NotificationHandler) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	n, err := h.Service.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to mark notifications as read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "All notifications marked as read", "count": n})
}

// DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, "Failed to delete notification")
		return
	}
	writeMessage(w, "Notification deleted")
}

// DELETE /notifications/clear-all
func (h *NotificationHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	n, err := h.Service.ClearAll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to clear notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "All notifications cleared", "count": n})
}

// POST /notifications/test
func (h *NotificationHandler) CreateTestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	n, err := h.Service.CreateTest(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to create test notification")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
