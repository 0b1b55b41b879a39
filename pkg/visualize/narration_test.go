package visualize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sabio/unified-ai-frontend/pkg/normalize"
)

func TestFromNarration(t *testing.T) {
	text := `## Event Analytics Summary

Total Events: 230

### Event Breakdown

1. **added to lists** (Source: contacts)
   - Events: 86
   - Unique Contacts: 79
2. **email opened** (Source: email)
   - Events: 1,440
3. **form submitted** (Source: forms)
   - Events: 12
`

	got, err := FromNarration(text)
	if err != nil {
		t.Fatalf("FromNarration() error: %v", err)
	}

	want := []EventRecord{
		{Name: "email opened", Count: 1440, Source: "email"},
		{Name: "added to lists", Count: 86, Source: "contacts"},
		{Name: "form submitted", Count: 12, Source: "forms"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromNarration() = %+v, want %+v", got, want)
	}
}

func TestFromNarrationDuplicatesKeepHigherCount(t *testing.T) {
	text := `**email opened** (Source: email)
- Events: 100
**email opened** (Source: email)
- Events: 150
**email opened** (Source: email)
- Events: 120
`

	got, err := FromNarration(text)
	if err != nil {
		t.Fatalf("FromNarration() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FromNarration() returned %d records, want 1", len(got))
	}
	if got[0].Count != 150 {
		t.Errorf("duplicate count = %d, want 150", got[0].Count)
	}
}

func TestFromNarrationIgnoresNoise(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "plain prose", text: "Your campaign is doing well overall."},
		{name: "bold without source", text: "**just emphasis**\n- Events: 5"},
		{name: "events line without a header", text: "- Events: 42"},
		{name: "zero count", text: "**stale** (Source: x)\n- Events: 0"},
		{name: "empty string", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromNarration(tt.text); !errors.Is(err, ErrNoData) {
				t.Errorf("FromNarration() error = %v, want ErrNoData", err)
			}
		})
	}
}

// The analytics renderer and the narration parser agree on the breakdown
// format, so prose generated from structured data parses back to the same
// names and counts.
func TestNarrationRoundTrip(t *testing.T) {
	resp, err := normalize.Decode([]byte(`{
		"success": true,
		"tool_executed": "get_event_analytics",
		"results": {
			"analytics": [
				{"event_name": "added_to_lists", "event_source": "contacts", "total_events": 86, "unique_contacts": 79},
				{"event_name": "email_opened", "event_source": "email", "total_events": 140, "unique_contacts": 90}
			]
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	rendered := normalize.Format(resp)

	got, err := FromNarration(rendered)
	if err != nil {
		t.Fatalf("FromNarration() error: %v", err)
	}

	want := []EventRecord{
		{Name: "email opened", Count: 140, Source: "email"},
		{Name: "added to lists", Count: 86, Source: "contacts"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func BenchmarkFromNarration(b *testing.B) {
	text := `1. **email opened** (Source: email)
   - Events: 1,440
2. **added to lists** (Source: contacts)
   - Events: 86
`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FromNarration(text); err != nil {
			b.Fatal(err)
		}
	}
}
