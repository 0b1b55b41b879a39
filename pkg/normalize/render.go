package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format renders a backend response as markdown. Responses that match no
// known shape render as the empty string; callers must treat that as an
// empty-content message, not a failure.
func Format(resp *Response) string {
	return Render(Classify(resp))
}

// Render produces the markdown narrative for a classified response.
func Render(c Classified) string {
	switch c.Kind {
	case KindError:
		return renderError(c.Text)
	case KindFormatted, KindFallback:
		return c.Text
	case KindTrends:
		return renderTrends(c.Results, c.Timestamp)
	case KindAnalytics:
		return renderAnalytics(c.Results, c.Timestamp)
	case KindAnswer:
		return renderAnswer(c.Results.Answer)
	case KindWorkflowStats:
		return renderWorkflowStats(c.Results)
	case KindSummary:
		return renderSummary(c.Results.Summary, c.RawResults)
	default:
		return ""
	}
}

func renderError(msg string) string {
	return fmt.Sprintf("**Error:** %s", msg)
}

func renderTrends(r *Results, timestamp string) string {
	lines := []string{"## Event Trends", ""}
	lines = appendContextLines(lines, r.OrganizationID, r.Timeframe)

	totalRows := r.TotalRows
	if totalRows == 0 {
		totalRows = len(r.Trends)
	}
	lines = append(lines, fmt.Sprintf("Total Rows: %d", totalRows), "")

	// Aggregate per event name and per timestamp bucket.
	type eventAgg struct {
		name      string
		count     int64
		intervals int
	}
	byEvent := map[string]*eventAgg{}
	byBucket := map[string]int64{}
	for _, row := range r.Trends {
		name := humanName(row.EventName)
		agg, ok := byEvent[name]
		if !ok {
			agg = &eventAgg{name: name}
			byEvent[name] = agg
		}
		agg.count += row.Count
		agg.intervals++
		if row.TimeBucket != "" {
			byBucket[row.TimeBucket] += row.Count
		}
	}

	events := make([]*eventAgg, 0, len(byEvent))
	for _, agg := range byEvent {
		events = append(events, agg)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].count != events[j].count {
			return events[i].count > events[j].count
		}
		return events[i].name < events[j].name
	})

	lines = append(lines, "### Events", "")
	for _, agg := range events {
		lines = append(lines, fmt.Sprintf("- **%s**: %d events across %d intervals", agg.name, agg.count, agg.intervals))
	}

	if len(byBucket) > 0 {
		buckets := make([]string, 0, len(byBucket))
		for bucket := range byBucket {
			buckets = append(buckets, bucket)
		}
		sort.Strings(buckets)

		lines = append(lines, "", "### Intervals", "")
		for _, bucket := range buckets {
			lines = append(lines, fmt.Sprintf("- %s: %d events", bucket, byBucket[bucket]))
		}
	}

	lines = appendGeneratedLine(lines, timestamp)
	return strings.Join(lines, "\n")
}

func renderAnalytics(r *Results, timestamp string) string {
	var totalEvents, totalContacts int64
	for _, entry := range r.Analytics {
		totalEvents += entry.TotalEvents
		totalContacts += entry.UniqueContacts
	}

	eventTypes := r.TotalEventTypes
	if eventTypes == 0 {
		eventTypes = len(r.Analytics)
	}

	lines := []string{"## Event Analytics Summary", ""}
	lines = appendContextLines(lines, r.OrganizationID, r.Timeframe)
	lines = append(lines,
		fmt.Sprintf("Total Events: %d", totalEvents),
		fmt.Sprintf("Total Unique Contacts: %d", totalContacts),
		fmt.Sprintf("Event Types: %d", eventTypes),
		"",
		"### Event Breakdown",
		"",
	)

	for i, entry := range r.Analytics {
		lines = append(lines, fmt.Sprintf("%d. **%s** (Source: %s)", i+1, humanName(entry.EventName), entry.EventSource))
		lines = append(lines, fmt.Sprintf("   - Events: %d", entry.TotalEvents))
		lines = append(lines, fmt.Sprintf("   - Unique Contacts: %d", entry.UniqueContacts))
		if entry.FirstEvent > 0 {
			lines = append(lines, fmt.Sprintf("   - First Seen: %s", formatDate(entry.FirstEvent)))
		}
		if entry.LastEvent > 0 {
			lines = append(lines, fmt.Sprintf("   - Last Seen: %s", formatDate(entry.LastEvent)))
		}
	}

	lines = appendGeneratedLine(lines, timestamp)
	return strings.Join(lines, "\n")
}

func renderAnswer(a *Answer) string {
	lines := []string{a.Summary}

	if len(a.Statistics) > 0 {
		lines = append(lines, "", "### Statistics", "")
		for _, key := range sortedKeys(a.Statistics) {
			if val, ok := primitiveValue(a.Statistics[key]); ok {
				lines = append(lines, fmt.Sprintf("- %s: %s", titleCase(key), val))
			}
		}
	}

	var extras []string
	if len(a.AnalyticsData) > 0 {
		extras = append(extras, fmt.Sprintf("Analytics data points: %d", len(a.AnalyticsData)))
	}
	if len(a.TrendsData) > 0 {
		extras = append(extras, fmt.Sprintf("Trend data points: %d", len(a.TrendsData)))
	}
	if a.ProcessingTimeHuman != "" {
		extras = append(extras, fmt.Sprintf("Processing time: %s", a.ProcessingTimeHuman))
	}
	if len(extras) > 0 {
		lines = append(lines, "")
		lines = append(lines, extras...)
	}

	return strings.Join(lines, "\n")
}

func renderWorkflowStats(r *Results) string {
	lines := []string{"## Workflow Execution Statistics", ""}
	if r.OrganizationID != "" {
		lines = append(lines, fmt.Sprintf("Organization: %s", r.OrganizationID))
	}
	if r.WorkflowID != "" {
		lines = append(lines, fmt.Sprintf("Workflow: %s", r.WorkflowID))
	}
	lines = append(lines, fmt.Sprintf("Total Executions: %d", r.TotalExecutions))

	if len(r.StatusCounts) > 0 {
		lines = append(lines, "")
		statuses := make([]string, 0, len(r.StatusCounts))
		for status := range r.StatusCounts {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			lines = append(lines, fmt.Sprintf("- %s: %d", titleCase(status), r.StatusCounts[status]))
		}
	}

	if r.Summary != "" {
		lines = append(lines, "", r.Summary)
	}

	return strings.Join(lines, "\n")
}

// renderSummary emits the summary text followed by a key/value dump of the
// remaining primitive-valued results fields, title-cased.
func renderSummary(summary string, raw map[string]any) string {
	lines := []string{summary}

	var dump []string
	for _, key := range sortedKeys(raw) {
		if key == "summary" {
			continue
		}
		if val, ok := primitiveValue(raw[key]); ok {
			dump = append(dump, fmt.Sprintf("- %s: %s", titleCase(key), val))
		}
	}
	if len(dump) > 0 {
		lines = append(lines, "")
		lines = append(lines, dump...)
	}

	return strings.Join(lines, "\n")
}

func appendContextLines(lines []string, orgID ID, timeframe string) []string {
	if orgID != "" {
		lines = append(lines, fmt.Sprintf("Organization: %s", orgID))
	}
	if timeframe != "" {
		lines = append(lines, fmt.Sprintf("Timeframe: %s", timeframe))
	}
	return lines
}

// appendGeneratedLine stamps the narrative with the payload's own timestamp.
// Wall-clock time is never used so identical payloads render identically.
func appendGeneratedLine(lines []string, timestamp string) []string {
	if timestamp == "" {
		return lines
	}
	return append(lines, "", fmt.Sprintf("Analysis generated: %s", timestamp))
}

func formatDate(epochMillis int64) string {
	return time.UnixMilli(epochMillis).UTC().Format("2006-01-02")
}

// humanName replaces the backend's snake_case event names with spaces.
func humanName(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// titleCase turns snake_case keys into "Title Case" labels.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// primitiveValue formats strings, numbers and bools; composite values are
// skipped by the key/value dumps.
func primitiveValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return fmt.Sprintf("%t", val), true
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return fmt.Sprintf("%g", val), true
	default:
		return "", false
	}
}
