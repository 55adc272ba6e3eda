package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	"github.com/Dias221467/task-reminders/internal/services"
	jwtutil "github.com/Dias221467/task-reminders/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var handlerNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	handler       http.Handler
	reminders     *memory.ReminderStore
	notifications *memory.NotificationStore
	token         string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := func() time.Time { return handlerNow }
	prefs := memory.NewPreferenceStore()
	reminders := memory.NewReminderStore()
	notifications := memory.NewNotificationStore()

	prefSvc := services.NewPreferenceService(prefs, clock)
	scheduler := services.NewReminderScheduler(reminders, memory.NewTaskStore(), prefSvc, clock)

	router := Router{
		JWTSecret:     testSecret,
		Notifications: NewNotificationHandler(services.NewBrowserNotificationService(notifications, clock)),
		Preferences:   NewPreferenceHandler(prefSvc),
		TaskReminders: NewTaskReminderHandler(scheduler),
		Health:        HealthHandler(nil),
	}.Build()

	token, err := jwtutil.GenerateToken("u1", "ann@example.com", "user", testSecret, time.Hour)
	require.NoError(t, err)

	return &testServer{handler: router, reminders: reminders, notifications: notifications, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_Unavailable(t *testing.T) {
	h := HealthHandler(func(ctx context.Context) error { return assert.AnError })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreferences_GetCreatesDefaultsAndUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/notifications/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pref models.NotificationPreference
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pref))
	assert.Equal(t, "u1", pref.UserID)
	assert.Equal(t, 30, pref.ReminderAdvanceTime)

	rec = s.do(t, http.MethodPut, "/notifications/preferences", map[string]interface{}{
		"email_notifications":   false,
		"reminder_advance_time": 10,
		"quiet_hours_start":     "22:00",
		"quiet_hours_end":       "07:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pref))
	assert.False(t, pref.EmailNotifications)
	assert.Equal(t, 10, pref.ReminderAdvanceTime)
	require.NotNil(t, pref.QuietHoursStart)
	assert.Equal(t, "22:00", *pref.QuietHoursStart)
}

func TestPreferences_RejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/notifications/preferences", map[string]interface{}{"quiet_hours_start": "25:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/notifications/preferences", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskReminders_ScheduleAndList(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/tasks/t1/reminders", map[string]string{
		"task_name": "Ship report",
		"due_date":  "2025-03-01",
		"due_time":  "14:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ReminderIDs []string `json:"reminder_ids"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Len(t, created.ReminderIDs, 2)

	rec = s.do(t, http.MethodGet, "/tasks/t1/reminders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reminders []models.TaskReminder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reminders))
	require.Len(t, reminders, 2)
	assert.Equal(t, models.NotificationTaskReminder, reminders[0].NotificationType)
	assert.Equal(t, models.NotificationTaskDue, reminders[1].NotificationType)
}

func TestTaskReminders_BadDueDate(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/tasks/t1/reminders", map[string]string{"task_name": "x", "due_date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/notifications/test", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.BrowserNotification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = s.do(t, http.MethodGet, "/notifications?unread_only=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.BrowserNotification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/notifications/"+created.ID+"/read", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/notifications/"+created.ID+"/clicked", nil).Code)

	rec = s.do(t, http.MethodGet, "/notifications?unread_only=true", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/notifications/mark-all-read", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/notifications/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/notifications/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/notifications/missing/read", nil).Code)
}

func TestNotifications_ClearAll(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/notifications/test", nil)
	s.do(t, http.MethodPost, "/notifications/test", nil)

	rec := s.do(t, http.MethodDelete, "/notifications/clear-all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(2), body.Count)
}

func TestNotifications_BadUnreadOnly(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/notifications?unread_only=maybe", nil).Code)
}

func TestParseDueDate(t *testing.T) {
	d, ok := parseDueDate("2025-03-01T14:30:00+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC), d)

	_, ok = parseDueDate("03/01/2025")
	assert.False(t, ok)
}
