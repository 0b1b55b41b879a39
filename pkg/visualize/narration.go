package visualize

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Narration parsing is the last-resort fallback: the backend sometimes
// answers with prose breakdowns instead of structured data. A record is a
// two-line pattern: a numbered/bolded "name (Source: x)" header followed by
// an "- Events: N" line.
var (
	narrationHeaderRe = regexp.MustCompile(`^\s*(?:\d+\.\s*)?\*\*(.+?)\*\*\s*\(Source:\s*([^)]+)\)`)
	narrationEventsRe = regexp.MustCompile(`^\s*[-*]\s*Events:\s*([\d,]+)`)
)

// FromNarration scans free-text narration line by line for event breakdowns.
// Duplicate names keep the higher count.
func FromNarration(text string) ([]EventRecord, error) {
	byName := map[string]EventRecord{}

	var pendingName, pendingSource string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()

		if m := narrationHeaderRe.FindStringSubmatch(line); m != nil {
			pendingName = strings.TrimSpace(m[1])
			pendingSource = strings.TrimSpace(m[2])
			continue
		}

		m := narrationEventsRe.FindStringSubmatch(line)
		if m == nil || pendingName == "" {
			continue
		}

		count, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil || count <= 0 {
			pendingName, pendingSource = "", ""
			continue
		}

		if existing, ok := byName[pendingName]; !ok || count > existing.Count {
			byName[pendingName] = EventRecord{
				Name:   pendingName,
				Count:  count,
				Source: pendingSource,
			}
		}
		pendingName, pendingSource = "", ""
	}

	records := make([]EventRecord, 0, len(byName))
	for _, rec := range byName {
		records = append(records, rec)
	}
	return finish(records)
}
