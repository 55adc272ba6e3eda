package handlers

import (
	"net/http"

	"github.com/Dias221467/task-reminders/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router groups the handlers served by the reminder API.
type Router struct {
	JWTSecret     string
	Notifications *NotificationHandler
	Preferences   *PreferenceHandler
	TaskReminders *TaskReminderHandler
	Health        http.HandlerFunc
}

// Build registers every route on a new mux router.
func (rt Router) Build() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", rt.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Notification routes; literal paths go before /{id}
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	protectedNotificationRoutes.HandleFunc("/preferences", rt.Preferences.GetPreferencesHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/preferences", rt.Preferences.UpdatePreferencesHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("", rt.Notifications.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/mark-all-read", rt.Notifications.MarkAllReadHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("/clear-all", rt.Notifications.ClearAllHandler).Methods("DELETE")
	protectedNotificationRoutes.HandleFunc("/test", rt.Notifications.CreateTestHandler).Methods("POST")
	protectedNotificationRoutes.HandleFunc("/{id}/read", rt.Notifications.MarkAsReadHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("/{id}/clicked", rt.Notifications.MarkClickedHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("/{id}", rt.Notifications.DeleteNotificationHandler).Methods("DELETE")

	// Task reminder routes
	protectedTaskRoutes := router.PathPrefix("/tasks").Subrouter()
	protectedTaskRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	protectedTaskRoutes.HandleFunc("/{id}/reminders", rt.TaskReminders.ScheduleRemindersHandler).Methods("POST")
	protectedTaskRoutes.HandleFunc("/{id}/reminders", rt.TaskReminders.GetTaskRemindersHandler).Methods("GET")

	router.Use(middleware.LoggingMiddleware)
	return router
}
