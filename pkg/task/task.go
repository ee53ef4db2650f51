package task

import "time"

// Stage identifies one of the four alert types a task can emit.
type Stage string

const (
	StagePrepare  Stage = "prepare"
	StageStart    Stage = "start"
	StageSoftStop Stage = "soft_stop"
	StageEnd      Stage = "end"
)

// Task is a time-bound task pulled from the Notion database. StartTime is
// always set for a Task that made it through normalization; EndTime may be
// nil for open-ended tasks. PrepareMins and SoftStopMins are nil when the
// corresponding column is absent or empty, which disables that stage.
type Task struct {
	ID           string
	Title        string
	StartTime    *time.Time
	EndTime      *time.Time
	Description  string
	URL          string
	PrepareMins  *int
	SoftStopMins *int

	// Fired flags are owned by the evaluator. Once true they stay true for
	// as long as the task remains in the active set under the same id.
	PrepareFired  bool
	StartFired    bool
	SoftStopFired bool
	EndFired      bool
}

// CopyFiredFrom carries the per-stage fired flags over from a previous
// instance of the same task, so a refetch cannot re-arm alerts that
// already went out.
func (t *Task) CopyFiredFrom(prev *Task) {
	t.PrepareFired = prev.PrepareFired
	t.StartFired = prev.StartFired
	t.SoftStopFired = prev.SoftStopFired
	t.EndFired = prev.EndFired
}
