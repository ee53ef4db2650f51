package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/alert"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

func sampleAlert() alert.Alert {
	start := time.Date(2025, 5, 26, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 26, 10, 0, 0, 0, time.UTC)
	return alert.Alert{
		Stage:     task.StageStart,
		Title:     "Start Now",
		Body:      "Lock in and begin the task\nDeep work",
		TaskTitle: "Deep work",
		TaskURL:   "https://notion.so/page1",
		StartTime: &start,
		EndTime:   &end,
	}
}

func TestDiscordSend(t *testing.T) {
	t.Run("Should post a rich embed and accept 204", func(t *testing.T) {
		var got discordPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		err := NewDiscord(srv.URL).Send(context.Background(), sampleAlert())
		require.NoError(t, err)

		assert.Equal(t, discordUsername, got.Username)
		assert.Contains(t, got.Content, "Task Alert")
		require.Len(t, got.Embeds, 1)

		embed := got.Embeds[0]
		assert.Contains(t, embed.Title, "Start Now")
		assert.Equal(t, stageColors[task.StageStart], embed.Color)
		require.Len(t, embed.Fields, 4)
		assert.Equal(t, "Deep work", embed.Fields[0].Value)
		assert.Contains(t, embed.Fields[1].Value, "https://notion.so/page1")
		assert.Equal(t, "09:00", embed.Fields[2].Value)
		assert.Equal(t, "10:00", embed.Fields[3].Value)
	})

	t.Run("Should omit time fields the alert does not carry", func(t *testing.T) {
		var got discordPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		a := sampleAlert()
		a.EndTime = nil
		err := NewDiscord(srv.URL).Send(context.Background(), a)
		require.NoError(t, err)

		require.Len(t, got.Embeds, 1)
		assert.Len(t, got.Embeds[0].Fields, 3)
	})

	t.Run("Should return an error on a non-204 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message": "rate limited"}`))
		}))
		defer srv.Close()

		err := NewDiscord(srv.URL).Send(context.Background(), sampleAlert())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestStageStyling(t *testing.T) {
	t.Run("Should map every stage to a distinct color", func(t *testing.T) {
		seen := map[int]task.Stage{}
		for _, s := range []task.Stage{task.StagePrepare, task.StageStart, task.StageSoftStop, task.StageEnd} {
			c := colorFor(s)
			_, dup := seen[c]
			assert.False(t, dup, "color %06x reused by %s", c, s)
			seen[c] = s
		}
	})

	t.Run("Should fall back to defaults for an unknown stage", func(t *testing.T) {
		assert.Equal(t, defaultColor, colorFor(task.Stage("bogus")))
		assert.Equal(t, defaultEmoji, emojiFor(task.Stage("bogus")))
	})
}
