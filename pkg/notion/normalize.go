package notion

import (
	"fmt"
	"strings"
	"time"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

const untitledTask = "Untitled Task"

// normalizePage converts a raw database page into a Task. It returns
// (nil, nil) when the page is deliberately not actionable — no title
// property, no due date, or a date-only due date that can never anchor a
// timed alert — and (nil, error) only when a value is structurally
// malformed. The distinction matters: absence is a normal branch, a bad
// date string is a skipped page that gets logged.
func normalizePage(p *page) (*task.Task, error) {
	titleProp := pickProp(p.Properties, "Name", "Title")
	if titleProp == nil {
		return nil, nil
	}
	title := untitledTask
	if titleProp.Type == "title" {
		title = joinPlainText(titleProp.Title)
	}

	dueProp := pickProp(p.Properties, "Due", "Date")
	if dueProp == nil || dueProp.Date == nil {
		return nil, nil
	}

	// A bare calendar date has no time component and therefore no instant
	// to alert on.
	if !strings.Contains(dueProp.Date.Start, "T") {
		return nil, nil
	}

	startTime, err := parseNotionTime(dueProp.Date.Start)
	if err != nil {
		return nil, fmt.Errorf("bad due start %q: %w", dueProp.Date.Start, err)
	}

	var endTime *time.Time
	if dueProp.Date.End != nil && *dueProp.Date.End != "" {
		et, err := parseNotionTime(*dueProp.Date.End)
		if err != nil {
			return nil, fmt.Errorf("bad due end %q: %w", *dueProp.Date.End, err)
		}
		endTime = &et
	}

	description := ""
	if descProp := pickProp(p.Properties, "Description", "Notes"); descProp != nil && descProp.Type == "rich_text" {
		description = joinPlainText(descProp.RichText)
	}

	return &task.Task{
		ID:           p.ID,
		Title:        title,
		StartTime:    &startTime,
		EndTime:      endTime,
		Description:  description,
		URL:          pageURL(p.ID),
		PrepareMins:  numberProp(p.Properties, "Prepare Mins"),
		SoftStopMins: numberProp(p.Properties, "Soft Stop Mins"),
	}, nil
}

// pickProp returns the first property present under any of the given names.
func pickProp(props map[string]property, names ...string) *property {
	for _, name := range names {
		if p, ok := props[name]; ok {
			return &p
		}
	}
	return nil
}

// numberProp reads an optional number column. A column that exists but
// holds no value counts as absent, not zero.
func numberProp(props map[string]property, name string) *int {
	p, ok := props[name]
	if !ok || p.Type != "number" || p.Number == nil {
		return nil
	}
	n := int(*p.Number)
	return &n
}

func joinPlainText(runs []richText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// parseNotionTime parses the datetime strings Notion emits, normally RFC 3339
// with an offset. A value without an offset is read as UTC rather than
// rejected.
func parseNotionTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized datetime: %w", err)
	}
	return t, nil
}

// pageURL derives the canonical notion.so link for a page id.
func pageURL(id string) string {
	return "https://notion.so/" + strings.ReplaceAll(id, "-", "")
}
