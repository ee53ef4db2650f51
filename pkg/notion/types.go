package notion

// Raw shapes of the Notion API responses we touch. Only the fields the
// normalizer and the connection check read are modeled; everything else in
// the payload is ignored by encoding/json.

type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

// property is the union of the Notion property kinds this tool reads.
// Type says which of the value fields is populated.
type property struct {
	Type     string       `json:"type"`
	Title    []richText   `json:"title,omitempty"`
	RichText []richText   `json:"rich_text,omitempty"`
	Number   *float64     `json:"number,omitempty"`
	Date     *dateValue   `json:"date,omitempty"`
	Status   *statusValue `json:"status,omitempty"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

// dateValue carries ISO 8601 strings. Start is a bare calendar date for
// all-day entries and a full datetime (with offset) for timed ones.
type dateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type statusValue struct {
	Name string `json:"name"`
}

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// database is the shape of a database retrieve, used by the connection check.
type database struct {
	Title      []richText `json:"title"`
	Properties map[string]struct {
		Type string `json:"type"`
	} `json:"properties"`
}
