package alert

import (
	"fmt"
	"time"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

// Evaluate decides which stages of t fire at now, marks them fired on the
// task, and returns the rendered alerts in stage order. The four stages are
// independent: a very short task can fire prepare, start, soft_stop and end
// in a single call. A stage that has already fired never fires again for
// the lifetime of the task in the active set.
//
// Flags flip before the caller attempts delivery, so delivery is
// at-most-once: a sink failure does not re-arm the stage.
func Evaluate(t *task.Task, now time.Time) []Alert {
	var fired []Alert

	if t.StartTime != nil && t.PrepareMins != nil && !t.PrepareFired {
		prepareAt := t.StartTime.Add(-time.Duration(*t.PrepareMins) * time.Minute)
		if !now.Before(prepareAt) {
			t.PrepareFired = true
			fired = append(fired, render(t, task.StagePrepare))
		}
	}

	if t.StartTime != nil && !t.StartFired && !now.Before(*t.StartTime) {
		t.StartFired = true
		fired = append(fired, render(t, task.StageStart))
	}

	if t.EndTime != nil && t.SoftStopMins != nil && !t.SoftStopFired {
		softStopAt := t.EndTime.Add(-time.Duration(*t.SoftStopMins) * time.Minute)
		if !now.Before(softStopAt) && now.Before(*t.EndTime) {
			t.SoftStopFired = true
			fired = append(fired, render(t, task.StageSoftStop))
		}
	}

	if t.EndTime != nil && !t.EndFired && !now.Before(*t.EndTime) {
		t.EndFired = true
		fired = append(fired, render(t, task.StageEnd))
	}

	return fired
}

func render(t *task.Task, stage task.Stage) Alert {
	a := Alert{
		Stage:     stage,
		TaskTitle: t.Title,
		TaskURL:   t.URL,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
	}

	switch stage {
	case task.StagePrepare:
		a.Title = fmt.Sprintf("Prepare - %d min warning", *t.PrepareMins)
		a.Body = fmt.Sprintf("Start getting ready to shift gears\n%s\nStarts at %s",
			t.Title, t.StartTime.Format("15:04"))
	case task.StageStart:
		a.Title = "Start Now"
		a.Body = fmt.Sprintf("Lock in and begin the task\n%s", t.Title)
	case task.StageSoftStop:
		a.Title = fmt.Sprintf("Soft Stop - %d min warning", *t.SoftStopMins)
		a.Body = fmt.Sprintf("Start winding down\n%s\nEnds at %s",
			t.Title, t.EndTime.Format("15:04"))
	case task.StageEnd:
		a.Title = "Time's Up!"
		a.Body = fmt.Sprintf("Disengage now\n%s", t.Title)
	}

	return a
}
