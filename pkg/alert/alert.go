package alert

import (
	"time"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

// Alert is one rendered stage notification, ready for a sink.
type Alert struct {
	Stage     task.Stage
	Title     string
	Body      string
	TaskTitle string
	TaskURL   string
	StartTime *time.Time
	EndTime   *time.Time
}
