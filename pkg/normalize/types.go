// Package normalize turns the backend's heterogeneous JSON responses into
// markdown narratives. The backend's response schema varies by which
// analytical tool it decided to invoke, so responses are validated at the
// boundary and classified into a closed set of shapes before rendering.
package normalize

import (
	"encoding/json"
	"fmt"
)

// Tool identifiers the backend reports in tool_executed.
const (
	ToolEventTrends    = "get_event_trends"
	ToolEventAnalytics = "get_event_analytics"
	ToolWorkflowStats  = "get_workflow_execution_statistics"
)

// ID accepts both string and numeric JSON identifiers.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("identifier is neither number nor string: %w", err)
	}
	*id = ID(s)
	return nil
}

// Response is the backend chat response envelope.
type Response struct {
	Success        bool            `json:"success"`
	ToolExecuted   string          `json:"tool_executed,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
	Result         string          `json:"result,omitempty"`
	Response       string          `json:"response,omitempty"`
	Message        string          `json:"message,omitempty"`
	Error          string          `json:"error,omitempty"`
	Results        json.RawMessage `json:"results,omitempty"`
}

// Decode parses a raw backend body into a Response.
func Decode(body []byte) (*Response, error) {
	resp := &Response{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("failed to parse backend response: %w", err)
	}
	return resp, nil
}

// Results is the typed view of the tool-specific results object.
type Results struct {
	FormattedMessage string           `json:"formattedMessage,omitempty"`
	OrganizationID   ID               `json:"organization_id,omitempty"`
	WorkflowID       ID               `json:"workflow_id,omitempty"`
	Timeframe        string           `json:"timeframe,omitempty"`
	Trends           []TrendRow       `json:"trends,omitempty"`
	TotalRows        int              `json:"total_rows,omitempty"`
	Analytics        []AnalyticsEntry `json:"analytics,omitempty"`
	TotalEventTypes  int              `json:"total_event_types,omitempty"`
	AnalyticsData    []map[string]any `json:"analyticsData,omitempty"`
	QueryType        string           `json:"queryType,omitempty"`
	Answer           *Answer          `json:"answer,omitempty"`
	TotalExecutions  int64            `json:"total_executions,omitempty"`
	StatusCounts     map[string]int64 `json:"status_counts,omitempty"`
	Summary          string           `json:"summary,omitempty"`
}

// TrendRow is one row of the event-trends tool output.
type TrendRow struct {
	EventName  string `json:"event_name"`
	Count      int64  `json:"count"`
	TimeBucket string `json:"time_bucket"`
}

// AnalyticsEntry is one row of the event-analytics tool output.
// First/last event timestamps are epoch milliseconds.
type AnalyticsEntry struct {
	EventName      string `json:"event_name"`
	EventSource    string `json:"event_source"`
	TotalEvents    int64  `json:"total_events"`
	UniqueContacts int64  `json:"unique_contacts"`
	FirstEvent     int64  `json:"first_event"`
	LastEvent      int64  `json:"last_event"`
}

// Answer is the free-form answer shape with optional supporting data.
type Answer struct {
	Summary             string           `json:"summary"`
	Statistics          map[string]any   `json:"statistics,omitempty"`
	AnalyticsData       []map[string]any `json:"analyticsData,omitempty"`
	TrendsData          []map[string]any `json:"trendsData,omitempty"`
	ProcessingTimeHuman string           `json:"processingTimeHuman,omitempty"`
}

// DecodeResults returns the typed and raw views of the results object.
// A results payload that is not an object yields nil views; the caller
// falls through to the plain-text branches.
func (r *Response) DecodeResults() (*Results, map[string]any) {
	if len(r.Results) == 0 {
		return nil, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(r.Results, &raw); err != nil {
		return nil, nil
	}

	typed := &Results{}
	if err := json.Unmarshal(r.Results, typed); err != nil {
		return nil, raw
	}

	return typed, raw
}
