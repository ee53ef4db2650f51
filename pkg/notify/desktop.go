package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/alert"
)

// Desktop shows alerts as OS notifications for setups without a Discord
// webhook.
type Desktop struct{}

func NewDesktop() *Desktop {
	beeep.AppName = "Notion Task Alerts"
	return &Desktop{}
}

func (d *Desktop) Send(_ context.Context, a alert.Alert) error {
	title := fmt.Sprintf("%s %s", emojiFor(a.Stage), a.Title)
	body := fmt.Sprintf("%s\n\nOpen in Notion: %s", a.Body, a.TaskURL)
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("desktop notification failed: %w", err)
	}
	return nil
}
