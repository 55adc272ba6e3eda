package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Dias221467/task-reminders/internal/services"
	"github.com/gorilla/mux"
)

type TaskReminderHandler struct {
	Scheduler *services.ReminderScheduler
}

func NewTaskReminderHandler(scheduler *services.ReminderScheduler) *TaskReminderHandler {
	return &TaskReminderHandler{Scheduler: scheduler}
}

type scheduleRemindersRequest struct {
	TaskName    string `json:"task_name"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// parseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (midnight UTC).
func parseDueDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// POST /tasks/{id}/reminders
func (h *TaskReminderHandler) ScheduleRemindersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req scheduleRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		http.Error(w, "Invalid due_date", http.StatusBadRequest)
		return
	}

	ids, err := h.Scheduler.Schedule(r.Context(), services.ScheduleRequest{
		UserID:      userID,
		TaskID:      mux.Vars(r)["id"],
		TaskName:    req.TaskName,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
		ProjectName: req.ProjectName,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to schedule reminders")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"reminder_ids": ids})
}

// GET /tasks/{id}/reminders
func (h *TaskReminderHandler) GetTaskRemindersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	reminders, err := h.Scheduler.ListForTask(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "Failed to get reminders")
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}
