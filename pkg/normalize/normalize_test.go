package normalize

import (
	"strings"
	"testing"
)

func mustDecode(t *testing.T, body string) *Response {
	t.Helper()
	resp, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return resp
}

const analyticsPayload = `{
	"success": true,
	"tool_executed": "get_event_analytics",
	"results": {
		"organization_id": 123,
		"timeframe": "7d",
		"analytics": [
			{
				"event_name": "added_to_lists",
				"event_source": "contacts",
				"total_events": 86,
				"unique_contacts": 79,
				"first_event": 1700000000000,
				"last_event": 1700500000000
			}
		],
		"total_event_types": 1
	},
	"timestamp": "2026-01-01T00:00:00Z"
}`

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{
			name: "failure wins over everything",
			body: `{"success": false, "error": "boom", "results": {"formattedMessage": "hi"}}`,
			want: KindError,
		},
		{
			name: "formatted message wins over summary",
			body: `{"success": true, "results": {"formattedMessage": "hi", "summary": "other"}}`,
			want: KindFormatted,
		},
		{
			name: "formatted message wins over analytics",
			body: `{"success": true, "tool_executed": "get_event_analytics", "results": {"formattedMessage": "hi", "analytics": [{"event_name": "x", "total_events": 1}]}}`,
			want: KindFormatted,
		},
		{
			name: "trends requires the tool and rows",
			body: `{"success": true, "tool_executed": "get_event_trends", "results": {"trends": [{"event_name": "x", "count": 1}]}}`,
			want: KindTrends,
		},
		{
			name: "trends tool without rows falls through",
			body: `{"success": true, "tool_executed": "get_event_trends", "results": {"summary": "nothing to see"}}`,
			want: KindSummary,
		},
		{
			name: "event analytics",
			body: analyticsPayload,
			want: KindAnalytics,
		},
		{
			name: "answer summary wins over workflow stats",
			body: `{"success": true, "tool_executed": "get_workflow_execution_statistics", "results": {"answer": {"summary": "done"}, "total_executions": 5}}`,
			want: KindAnswer,
		},
		{
			name: "workflow stats",
			body: `{"success": true, "tool_executed": "get_workflow_execution_statistics", "results": {"total_executions": 5}}`,
			want: KindWorkflowStats,
		},
		{
			name: "generic summary",
			body: `{"success": true, "results": {"summary": "all good", "total_count": 4}}`,
			want: KindSummary,
		},
		{
			name: "fallback to message",
			body: `{"success": true, "message": "plain answer"}`,
			want: KindFallback,
		},
		{
			name: "nothing matches",
			body: `{"success": true}`,
			want: KindEmpty,
		},
		{
			name: "results as array is tolerated",
			body: `{"success": true, "results": [1, 2], "message": "fine"}`,
			want: KindFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(mustDecode(t, tt.body))
			if got.Kind != tt.want {
				t.Errorf("Classify() kind = %s, want %s", got.Kind, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	resp := mustDecode(t, `{"success": false, "error": "Backend timeout"}`)

	got := Format(resp)
	want := "**Error:** Backend timeout"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatEventAnalytics(t *testing.T) {
	got := Format(mustDecode(t, analyticsPayload))

	wantContain := []string{
		"## Event Analytics Summary",
		"Organization: 123",
		"Timeframe: 7d",
		"Total Events: 86",
		"Total Unique Contacts: 79",
		"Event Types: 1",
		"1. **added to lists** (Source: contacts)",
		"- Events: 86",
		"- Unique Contacts: 79",
		"- First Seen: 2023-11-14",
		"- Last Seen: 2023-11-20",
		"Analysis generated: 2026-01-01T00:00:00Z",
	}
	for _, want := range wantContain {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}
}

func TestFormatEventAnalyticsSumsAcrossEntries(t *testing.T) {
	body := `{
		"success": true,
		"tool_executed": "get_event_analytics",
		"results": {
			"analytics": [
				{"event_name": "opened", "event_source": "email", "total_events": 30, "unique_contacts": 10},
				{"event_name": "clicked", "event_source": "email", "total_events": 12, "unique_contacts": 8}
			]
		}
	}`

	got := Format(mustDecode(t, body))
	for _, want := range []string{"Total Events: 42", "Total Unique Contacts: 18", "Event Types: 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}
}

func TestFormatIdempotent(t *testing.T) {
	bodies := []string{
		analyticsPayload,
		`{"success": true, "results": {"summary": "all good", "b_key": 2, "a_key": 1, "z_key": "last"}}`,
		`{"success": true, "tool_executed": "get_event_trends", "results": {"trends": [
			{"event_name": "opened", "count": 5, "time_bucket": "2026-01-02"},
			{"event_name": "opened", "count": 7, "time_bucket": "2026-01-01"},
			{"event_name": "clicked", "count": 2, "time_bucket": "2026-01-01"}
		]}}`,
	}

	for _, body := range bodies {
		resp := mustDecode(t, body)
		first := Format(resp)
		second := Format(resp)
		if first != second {
			t.Errorf("Format() not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
		}
	}
}

func TestFormatTrends(t *testing.T) {
	body := `{
		"success": true,
		"tool_executed": "get_event_trends",
		"results": {
			"organization_id": "42",
			"timeframe": "30d",
			"trends": [
				{"event_name": "form_submitted", "count": 70, "time_bucket": "2026-01-01"},
				{"event_name": "form_submitted", "count": 50, "time_bucket": "2026-01-02"},
				{"event_name": "email_opened", "count": 30, "time_bucket": "2026-01-01"}
			]
		}
	}`

	got := Format(mustDecode(t, body))
	wantContain := []string{
		"## Event Trends",
		"Organization: 42",
		"Timeframe: 30d",
		"Total Rows: 3",
		"- **form submitted**: 120 events across 2 intervals",
		"- **email opened**: 30 events across 1 intervals",
		"- 2026-01-01: 100 events",
		"- 2026-01-02: 50 events",
	}
	for _, want := range wantContain {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}

	// Busiest event is listed first.
	if strings.Index(got, "form submitted") > strings.Index(got, "email opened") {
		t.Error("events are not ordered by total count")
	}
}

func TestFormatAnswer(t *testing.T) {
	body := `{
		"success": true,
		"results": {
			"answer": {
				"summary": "Engagement is trending up.",
				"statistics": {"total_events": 120, "active_contacts": 37},
				"analyticsData": [{"a": 1}, {"b": 2}],
				"trendsData": [{"c": 3}],
				"processingTimeHuman": "1.2s"
			}
		}
	}`

	got := Format(mustDecode(t, body))
	wantContain := []string{
		"Engagement is trending up.",
		"### Statistics",
		"- Active Contacts: 37",
		"- Total Events: 120",
		"Analytics data points: 2",
		"Trend data points: 1",
		"Processing time: 1.2s",
	}
	for _, want := range wantContain {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}
}

func TestFormatWorkflowStats(t *testing.T) {
	body := `{
		"success": true,
		"tool_executed": "get_workflow_execution_statistics",
		"results": {
			"organization_id": 1,
			"workflow_id": 7,
			"total_executions": 900,
			"status_counts": {"completed": 700, "failed": 50, "running": 150},
			"summary": "Most executions completed."
		}
	}`

	got := Format(mustDecode(t, body))
	wantContain := []string{
		"## Workflow Execution Statistics",
		"Organization: 1",
		"Workflow: 7",
		"Total Executions: 900",
		"- Completed: 700",
		"- Failed: 50",
		"- Running: 150",
		"Most executions completed.",
	}
	for _, want := range wantContain {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}
}

func TestFormatGenericSummary(t *testing.T) {
	body := `{
		"success": true,
		"results": {
			"summary": "Snapshot ready.",
			"organization_id": 9,
			"total_count": 55,
			"verified": true,
			"nested": {"skip": "me"},
			"rows": [1, 2, 3]
		}
	}`

	got := Format(mustDecode(t, body))
	wantContain := []string{
		"Snapshot ready.",
		"- Organization Id: 9",
		"- Total Count: 55",
		"- Verified: true",
	}
	for _, want := range wantContain {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q\nGot:\n%s", want, got)
		}
	}

	for _, unwanted := range []string{"Nested", "Rows", "Summary:"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("Format() should not contain %q\nGot:\n%s", unwanted, got)
		}
	}
}

func TestFormatFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "result first",
			body: `{"success": true, "result": "from result", "response": "from response", "message": "from message"}`,
			want: "from result",
		},
		{
			name: "then response",
			body: `{"success": true, "response": "from response", "message": "from message"}`,
			want: "from response",
		},
		{
			name: "then message",
			body: `{"success": true, "message": "from message"}`,
			want: "from message",
		},
		{
			name: "empty otherwise",
			body: `{"success": true}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(mustDecode(t, tt.body)); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ID
	}{
		{name: "numeric id", body: `{"success": true, "results": {"organization_id": 123, "summary": "s"}}`, want: "123"},
		{name: "string id", body: `{"success": true, "results": {"organization_id": "org-1", "summary": "s"}}`, want: "org-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, _ := mustDecode(t, tt.body).DecodeResults()
			if results == nil {
				t.Fatal("DecodeResults() returned nil")
			}
			if results.OrganizationID != tt.want {
				t.Errorf("organization_id = %q, want %q", results.OrganizationID, tt.want)
			}
		})
	}
}

func BenchmarkFormatEventAnalytics(b *testing.B) {
	resp, err := Decode([]byte(analyticsPayload))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Format(resp)
	}
}
