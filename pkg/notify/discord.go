package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/alert"
)

const (
	discordUsername = "Notion Task Alerts"
	discordAvatar   = "https://www.notion.so/images/favicon.ico"

	dispatchTimeout = 10 * time.Second
)

// Discord posts alerts to a Discord webhook as rich embeds. A webhook
// accepts the message with 204; anything else is an error the caller logs
// and drops.
type Discord struct {
	http       *resty.Client
	webhookURL string
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		http: resty.New().
			SetTimeout(dispatchTimeout).
			SetHeader("Content-Type", "application/json"),
		webhookURL: webhookURL,
	}
}

type discordPayload struct {
	Content   string         `json:"content"`
	Embeds    []discordEmbed `json:"embeds"`
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp"`
	Fields      []discordField `json:"fields"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (d *Discord) Send(ctx context.Context, a alert.Alert) error {
	emoji := emojiFor(a.Stage)

	embed := discordEmbed{
		Title:       fmt.Sprintf("%s %s", emoji, a.Title),
		Description: a.Body,
		Color:       colorFor(a.Stage),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields: []discordField{
			{Name: "📋 Task", Value: a.TaskTitle, Inline: true},
			{Name: "🔗 Open in Notion", Value: fmt.Sprintf("[Click here to open task](%s)", a.TaskURL), Inline: true},
		},
	}
	if a.StartTime != nil {
		embed.Fields = append(embed.Fields, discordField{
			Name: "⏰ Start Time", Value: a.StartTime.Format("15:04"), Inline: true,
		})
	}
	if a.EndTime != nil {
		embed.Fields = append(embed.Fields, discordField{
			Name: "⏱️ End Time", Value: a.EndTime.Format("15:04"), Inline: true,
		})
	}

	payload := discordPayload{
		Content:   fmt.Sprintf("@here %s **Task Alert**", emoji),
		Embeds:    []discordEmbed{embed},
		Username:  discordUsername,
		AvatarURL: discordAvatar,
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("discord webhook request failed: %w", err)
	}
	if resp.StatusCode() != 204 {
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
