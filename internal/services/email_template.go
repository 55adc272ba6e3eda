package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/Dias221467/task-reminders/internal/models"
)

// EmailContent is the data rendered into a reminder email.
type EmailContent struct {
	UserName    string
	Title       string
	Message     string
	TaskName    string
	ProjectName string
	Priority    string
	ActionURL   string
}

// PriorityColor maps a task priority to its badge color.
func PriorityColor(priority string) string {
	switch priority {
	case models.PriorityHigh:
		return "#dc2626"
	case models.PriorityMedium:
		return "#f59e0b"
	case models.PriorityLow:
		return "#10b981"
	default:
		return "#6b7280"
	}
}

var reminderEmailTemplate = template.Must(template.New("reminder").Funcs(template.FuncMap{
	"priorityColor": PriorityColor,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Inter', -apple-system, BlinkMacSystemFont, sans-serif; background-color: #0B0D14; color: #ffffff; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 20px auto 0; background-color: #1a1d24; border-radius: 12px; padding: 40px; }
.header { text-align: center; margin-bottom: 30px; }
.logo, .title { color: #F4B400; font-size: 24px; font-weight: bold; }
.content { line-height: 1.6; color: #e5e7eb; }
.task-info { background-color: #374151; border-radius: 8px; padding: 16px; margin: 20px 0; }
.priority-badge { display: inline-block; color: white; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: 600; text-transform: uppercase; }
.action-button { display: inline-block; background-color: #F4B400; color: #0B0D14; text-decoration: none; padding: 16px 32px; border-radius: 8px; font-weight: 600; margin: 20px 0; }
.footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #374151; color: #9ca3af; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <div class="logo">Aurum Life</div>
    <p style="color: #9ca3af;">Transform your potential into gold</p>
  </div>
  <div class="title">{{.Title}}</div>
  <div class="content">
    <p>Hi {{.UserName}},</p>
    <p>{{.Message}}</p>
    <div class="task-info">
      <h3 style="margin-top: 0; color: #F4B400;">Task Details</h3>
      <p><strong>Task:</strong> {{if .TaskName}}{{.TaskName}}{{else}}Unknown Task{{end}}</p>
      {{- if .ProjectName}}
      <p><strong>Project:</strong> {{.ProjectName}}</p>
      {{- end}}
      {{- if .Priority}}
      <p><strong>Priority:</strong> <span class="priority-badge" style="background-color: {{priorityColor .Priority}};">{{.Priority}}</span></p>
      {{- end}}
    </div>
    <div style="text-align: center;">
      <a href="{{.ActionURL}}" class="action-button">View Task</a>
    </div>
    <p>Stay focused and keep building your golden future!</p>
  </div>
  <div class="footer">
    <p>You received this notification because you have task notifications enabled in your Aurum Life settings.</p>
  </div>
</div>
</body>
</html>
`))

// RenderReminderEmail renders the HTML body of a reminder email.
func RenderReminderEmail(c EmailContent) (string, error) {
	var buf bytes.Buffer
	if err := reminderEmailTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render reminder email: %w", err)
	}
	return buf.String(), nil
}

// TaskActionURL links to the task in the web app.
func TaskActionURL(baseURL, taskID string) string {
	return fmt.Sprintf("%s/tasks?task_id=%s", baseURL, url.QueryEscape(taskID))
}
