package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("secret-token", "db-1", testLogger())
	c.SetBaseURL(srv.URL)
	return c
}

const queryResultPage = `{
	"id": "11111111-2222-3333-4444-555555555555",
	"properties": {
		"Name": {"type": "title", "title": [{"plain_text": "Standup"}]},
		"Due": {"type": "date", "date": {"start": "2025-05-26T09:00:00.000+00:00", "end": "2025-05-26T09:15:00.000+00:00"}},
		"Prepare Mins": {"type": "number", "number": 5},
		"Status": {"type": "status", "status": {"name": "To Do"}}
	}
}`

func TestQueryDay(t *testing.T) {
	day := time.Date(2025, 5, 26, 13, 45, 0, 0, time.UTC)

	t.Run("Should send the day window and status filter with the bearer token", func(t *testing.T) {
		var gotBody map[string]any
		var gotAuth, gotVersion, gotPath string

		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotVersion = r.Header.Get("Notion-Version")
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [], "has_more": false}`))
		})

		_, err := c.QueryDay(context.Background(), day, "To Do")
		require.NoError(t, err)

		assert.Equal(t, "Bearer secret-token", gotAuth)
		assert.Equal(t, apiVersion, gotVersion)
		assert.Equal(t, "/v1/databases/db-1/query", gotPath)

		filter, ok := gotBody["filter"].(map[string]any)
		require.True(t, ok)
		and, ok := filter["and"].([]any)
		require.True(t, ok)
		require.Len(t, and, 3)

		first := and[0].(map[string]any)
		assert.Equal(t, "Due", first["property"])
		assert.Equal(t, "2025-05-26T00:00:00Z",
			first["date"].(map[string]any)["on_or_after"])

		last := and[2].(map[string]any)
		assert.Equal(t, "Status", last["property"])
		assert.Equal(t, "To Do", last["status"].(map[string]any)["equals"])
	})

	t.Run("Should omit the status clause when the filter is empty", func(t *testing.T) {
		var gotBody map[string]any
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(`{"results": [], "has_more": false}`))
		})

		_, err := c.QueryDay(context.Background(), day, "")
		require.NoError(t, err)

		and := gotBody["filter"].(map[string]any)["and"].([]any)
		assert.Len(t, and, 2)
	})

	t.Run("Should normalize returned pages into tasks", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [` + queryResultPage + `], "has_more": false}`))
		})

		tasks, err := c.QueryDay(context.Background(), day, "To Do")
		require.NoError(t, err)
		require.Len(t, tasks, 1)

		got := tasks[0]
		assert.Equal(t, "Standup", got.Title)
		assert.Equal(t, time.Date(2025, 5, 26, 9, 0, 0, 0, time.UTC), *got.StartTime)
		require.NotNil(t, got.PrepareMins)
		assert.Equal(t, 5, *got.PrepareMins)
		assert.Nil(t, got.SoftStopMins)
	})

	t.Run("Should skip non-actionable pages without failing the batch", func(t *testing.T) {
		dateOnly := `{"id": "d", "properties": {
			"Name": {"type": "title", "title": [{"plain_text": "All day"}]},
			"Due": {"type": "date", "date": {"start": "2025-05-26"}}
		}}`
		malformed := `{"id": "m", "properties": {
			"Name": {"type": "title", "title": [{"plain_text": "Broken"}]},
			"Due": {"type": "date", "date": {"start": "2025-05-26Tbogus"}}
		}}`
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [` + dateOnly + `,` + malformed + `,` + queryResultPage + `], "has_more": false}`))
		})

		tasks, err := c.QueryDay(context.Background(), day, "To Do")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Standup", tasks[0].Title)
	})

	t.Run("Should follow pagination cursors", func(t *testing.T) {
		calls := 0
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			calls++
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if calls == 1 {
				assert.Nil(t, body["start_cursor"])
				w.Write([]byte(`{"results": [` + queryResultPage + `], "has_more": true, "next_cursor": "cur-2"}`))
				return
			}
			assert.Equal(t, "cur-2", body["start_cursor"])
			w.Write([]byte(`{"results": [], "has_more": false}`))
		})

		tasks, err := c.QueryDay(context.Background(), day, "To Do")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, tasks, 1)
	})

	t.Run("Should fail the fetch on an API error status", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"object": "error", "code": "unauthorized"}`))
		})

		tasks, err := c.QueryDay(context.Background(), day, "To Do")
		require.Error(t, err)
		assert.Nil(t, tasks)
		assert.Contains(t, err.Error(), "401")
	})
}

func TestCheckConnection(t *testing.T) {
	t.Run("Should report database title, properties and page count", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.Method == http.MethodGet {
				w.Write([]byte(`{
					"title": [{"plain_text": "My "}, {"plain_text": "Tasks"}],
					"properties": {
						"Name": {"type": "title"},
						"Due": {"type": "date"},
						"Status": {"type": "status"}
					}
				}`))
				return
			}
			w.Write([]byte(`{"results": [` + queryResultPage + `], "has_more": false}`))
		})

		info, err := c.CheckConnection(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "My Tasks", info.Title)
		assert.Equal(t, 1, info.PageCount)
		assert.Equal(t, map[string]string{
			"Name":   "title",
			"Due":    "date",
			"Status": "status",
		}, info.Properties)
	})

	t.Run("Should surface a retrieve failure", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object": "error", "code": "object_not_found"}`))
		})

		_, err := c.CheckConnection(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
