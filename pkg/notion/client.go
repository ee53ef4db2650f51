package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"

	queryPageSize = 100
)

// Client queries one Notion database. Fetches are deliberately not bounded
// by a client-side timeout: a slow fetch delays the next evaluation tick
// rather than failing the cycle.
type Client struct {
	http       *resty.Client
	databaseID string
	log        *log.Logger
}

// NewClient builds a client authenticated with a Notion integration token.
// The token rides on an oauth2 static source so the bearer header is applied
// by the transport rather than sprinkled over every request.
func NewClient(token, databaseID string, logger *log.Logger) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)

	rc := resty.NewWithClient(httpClient).
		SetBaseURL(defaultBaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Notion-Version", apiVersion)

	return &Client{
		http:       rc,
		databaseID: databaseID,
		log:        logger.With("component", "notion"),
	}
}

// SetBaseURL points the client at a different API host. Tests use this to
// target an httptest server.
func (c *Client) SetBaseURL(u string) {
	c.http.SetBaseURL(u)
}

// QueryDay fetches every task in the database whose due date falls inside
// the given calendar day (UTC day boundaries) and, when status is non-empty,
// whose status matches. Pages that cannot be normalized into a Task are
// logged and skipped; a transport or API error aborts the whole fetch so
// the caller keeps its current active set for this cycle.
func (c *Client) QueryDay(ctx context.Context, day time.Time, status string) ([]*task.Task, error) {
	var tasks []*task.Task

	cursor := ""
	for {
		req := queryRequest{
			Filter:   dayFilter(day, status),
			PageSize: queryPageSize,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		var out queryResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			Post("/v1/databases/" + c.databaseID + "/query")
		if err != nil {
			return nil, fmt.Errorf("notion query failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("notion query returned %d: %s", resp.StatusCode(), resp.String())
		}

		for i := range out.Results {
			t, err := normalizePage(&out.Results[i])
			if err != nil {
				c.log.Warn("skipping malformed page", "page", out.Results[i].ID, "err", err)
				continue
			}
			if t == nil {
				continue
			}
			tasks = append(tasks, t)
		}

		if !out.HasMore || out.NextCursor == nil {
			break
		}
		cursor = *out.NextCursor
	}

	c.log.Info("fetched tasks", "count", len(tasks), "day", day.Format("2006-01-02"))
	return tasks, nil
}

// dayFilter builds the Notion query filter for one UTC calendar day,
// optionally narrowed to a status value.
func dayFilter(day time.Time, status string) map[string]any {
	day = day.UTC()
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24*time.Hour - time.Nanosecond)

	and := []map[string]any{
		{
			"property": "Due",
			"date":     map[string]any{"on_or_after": startOfDay.Format(time.RFC3339)},
		},
		{
			"property": "Due",
			"date":     map[string]any{"on_or_before": endOfDay.Format(time.RFC3339Nano)},
		},
	}
	if status != "" {
		and = append(and, map[string]any{
			"property": "Status",
			"status":   map[string]any{"equals": status},
		})
	}
	return map[string]any{"and": and}
}

// DatabaseInfo describes the target database for the connection check.
type DatabaseInfo struct {
	Title      string
	Properties map[string]string
	PageCount  int
}

// CheckConnection verifies the token and database id by retrieving the
// database and running an unfiltered query, mirroring what a first-time
// setup needs to confirm before the poll loop is worth starting.
func (c *Client) CheckConnection(ctx context.Context) (*DatabaseInfo, error) {
	var db database
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&db).
		Get("/v1/databases/" + c.databaseID)
	if err != nil {
		return nil, fmt.Errorf("notion database retrieve failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notion database retrieve returned %d: %s", resp.StatusCode(), resp.String())
	}

	info := &DatabaseInfo{
		Title:      joinPlainText(db.Title),
		Properties: make(map[string]string, len(db.Properties)),
	}
	for name, p := range db.Properties {
		info.Properties[name] = p.Type
	}

	var out queryResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetBody(queryRequest{PageSize: queryPageSize}).
		SetResult(&out).
		Post("/v1/databases/" + c.databaseID + "/query")
	if err != nil {
		return nil, fmt.Errorf("notion query failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notion query returned %d: %s", resp.StatusCode(), resp.String())
	}
	info.PageCount = len(out.Results)

	return info, nil
}
