// Package visualize projects backend analytics payloads into the uniform
// record list consumed by every chart type.
package visualize

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sabio/unified-ai-frontend/pkg/normalize"
)

// ErrNoData signals that a payload produced zero valid records. Callers show
// a placeholder instead of rendering a blank chart.
var ErrNoData = errors.New("no visualization data")

// ChartKind selects a chart renderer on the dashboard.
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartLine     ChartKind = "line"
	ChartPie      ChartKind = "pie"
	ChartDoughnut ChartKind = "doughnut"
	ChartTable    ChartKind = "table"
)

// QueryTypeSourceAnalytics marks structured payloads keyed by event source.
const QueryTypeSourceAnalytics = "source_analytics"

// EventRecord is the uniform visualization unit.
type EventRecord struct {
	Name           string    `json:"name"`
	Count          int64     `json:"count"`
	Source         string    `json:"source,omitempty"`
	UniqueContacts int64     `json:"uniqueContacts,omitempty"`
	FirstEvent     time.Time `json:"firstEvent,omitzero"`
	LastEvent      time.Time `json:"lastEvent,omitzero"`
}

// FromResponse extracts records from a backend response, trying the event
// analytics shape, then the structured shape, then free-text narration.
func FromResponse(resp *normalize.Response) ([]EventRecord, error) {
	results, _ := resp.DecodeResults()
	if results != nil {
		if len(results.Analytics) > 0 {
			return FromAnalytics(results.Analytics)
		}
		if len(results.AnalyticsData) > 0 {
			return FromStructured(results.AnalyticsData, results.QueryType)
		}
		if results.Answer != nil && len(results.Answer.AnalyticsData) > 0 {
			return FromStructured(results.Answer.AnalyticsData, results.QueryType)
		}
	}

	for _, text := range narrationCandidates(resp, results) {
		if records, err := FromNarration(text); err == nil {
			return records, nil
		}
	}

	return nil, ErrNoData
}

// FromAnalytics maps event-analytics rows. Entries with a non-positive event
// count are dropped before chart components ever see them.
func FromAnalytics(entries []normalize.AnalyticsEntry) ([]EventRecord, error) {
	records := make([]EventRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.TotalEvents <= 0 {
			continue
		}
		rec := EventRecord{
			Name:           strings.ReplaceAll(entry.EventName, "_", " "),
			Count:          entry.TotalEvents,
			Source:         entry.EventSource,
			UniqueContacts: entry.UniqueContacts,
		}
		if entry.FirstEvent > 0 {
			rec.FirstEvent = time.UnixMilli(entry.FirstEvent).UTC()
		}
		if entry.LastEvent > 0 {
			rec.LastEvent = time.UnixMilli(entry.LastEvent).UTC()
		}
		records = append(records, rec)
	}
	return finish(records)
}

// FromStructured maps the analyticsData shape. The queryType discriminator
// denotes which fields hold name and count.
func FromStructured(rows []map[string]any, queryType string) ([]EventRecord, error) {
	records := make([]EventRecord, 0, len(rows))
	for _, row := range rows {
		var rec EventRecord
		if queryType == QueryTypeSourceAnalytics {
			rec = EventRecord{
				Name:   getString(row, "source"),
				Count:  getNumber(row, "total_events", "count"),
				Source: getString(row, "source"),
			}
		} else {
			rec = EventRecord{
				Name:   getString(row, "event_name", "name"),
				Count:  getNumber(row, "event_count", "count"),
				Source: getString(row, "event_source", "source"),
			}
		}
		if rec.Name == "" || rec.Count <= 0 {
			continue
		}
		records = append(records, rec)
	}
	return finish(records)
}

// Limit returns the record cap for a chart type; zero means uncapped. Caps
// apply at render time so the table view keeps the full set.
func Limit(kind ChartKind) int {
	switch kind {
	case ChartPie, ChartDoughnut:
		return 15
	case ChartBar, ChartLine:
		return 20
	default:
		return 0
	}
}

// Truncate applies the chart-type cap to an already-sorted record list.
func Truncate(records []EventRecord, kind ChartKind) []EventRecord {
	limit := Limit(kind)
	if limit == 0 || len(records) <= limit {
		return records
	}
	return records[:limit]
}

// finish sorts by count descending and enforces the no-data contract.
func finish(records []EventRecord) ([]EventRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}

func narrationCandidates(resp *normalize.Response, results *normalize.Results) []string {
	var candidates []string
	if results != nil && results.FormattedMessage != "" {
		candidates = append(candidates, results.FormattedMessage)
	}
	for _, text := range []string{resp.Result, resp.Response, resp.Message} {
		if text != "" {
			candidates = append(candidates, text)
		}
	}
	return candidates
}

func getString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := row[key]; ok && val != nil {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func getNumber(row map[string]any, keys ...string) int64 {
	for _, key := range keys {
		val, ok := row[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			if n, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}
