package notify

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/alert"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

// Notifier delivers one rendered alert. Delivery is fire-and-forget from
// the scheduler's point of view: an error is logged by the caller and the
// alert is not retried.
type Notifier interface {
	Send(ctx context.Context, a alert.Alert) error
}

// Per-stage embed colors and emoji carried over across every sink that can
// show them.
var (
	stageColors = map[task.Stage]int{
		task.StagePrepare:  0xFFA500, // orange: get ready
		task.StageStart:    0x00FF00, // green: go time
		task.StageSoftStop: 0xFFFF00, // yellow: wind down
		task.StageEnd:      0xFF0000, // red: stop now
	}
	stageEmoji = map[task.Stage]string{
		task.StagePrepare:  "🧠",
		task.StageStart:    "🎯",
		task.StageSoftStop: "🔄",
		task.StageEnd:      "🛑",
	}

	defaultColor = 0x0099FF
	defaultEmoji = "🔔"
)

func colorFor(s task.Stage) int {
	if c, ok := stageColors[s]; ok {
		return c
	}
	return defaultColor
}

func emojiFor(s task.Stage) string {
	if e, ok := stageEmoji[s]; ok {
		return e
	}
	return defaultEmoji
}

// Log is a sink that only writes the alert to the log. Useful as a dry-run
// target when neither Discord nor a desktop session is wired up.
type Log struct {
	log *log.Logger
}

func NewLog(logger *log.Logger) *Log {
	return &Log{log: logger.With("component", "notify")}
}

func (l *Log) Send(_ context.Context, a alert.Alert) error {
	l.log.Info("alert",
		"stage", a.Stage,
		"title", a.Title,
		"task", a.TaskTitle,
		"url", a.TaskURL,
	)
	return nil
}
