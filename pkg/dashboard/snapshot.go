// Package dashboard builds the view models behind the analytics tabs.
// Snapshots are computed fresh per request from backend JSON and discarded;
// nothing is cached across requests.
package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Scope marks whether a snapshot covers one organization or all of them.
type Scope string

const (
	ScopeOrganization Scope = "organization"
	ScopeGlobal       Scope = "global"
)

// Slice is one entry of a status distribution.
type Slice struct {
	Label   string  `json:"label"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// AnalyticsSnapshot summarizes workflow or client state for a dashboard tab.
type AnalyticsSnapshot struct {
	Scope          Scope   `json:"scope"`
	OrganizationID string  `json:"organizationId,omitempty"`
	Total          int64   `json:"total"`
	Distribution   []Slice `json:"distribution"`
}

// collection keys checked when the backend sends item lists instead of
// pre-aggregated counts.
var itemListKeys = []string{"workflows", "executions", "clients", "contacts", "items"}

// SnapshotFromJSON builds a snapshot from a backend payload. Two shapes are
// accepted: a pre-aggregated `status_counts` object, or a list of items each
// carrying a `status` field.
func SnapshotFromJSON(body []byte, scope Scope, organizationID string) (*AnalyticsSnapshot, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse analytics payload: %w", err)
	}

	counts := statusCounts(payload)
	if len(counts) == 0 {
		return nil, fmt.Errorf("analytics payload carries no status data")
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	distribution := make([]Slice, 0, len(counts))
	for label, count := range counts {
		slice := Slice{Label: label, Count: count}
		if total > 0 {
			slice.Percent = float64(count) / float64(total) * 100
		}
		distribution = append(distribution, slice)
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Label < distribution[j].Label
	})

	return &AnalyticsSnapshot{
		Scope:          scope,
		OrganizationID: organizationID,
		Total:          total,
		Distribution:   distribution,
	}, nil
}

func statusCounts(payload map[string]any) map[string]int64 {
	counts := map[string]int64{}

	if raw, ok := payload["status_counts"].(map[string]any); ok {
		for label, val := range raw {
			if n, ok := val.(float64); ok {
				counts[label] = int64(n)
			}
		}
		return counts
	}

	for _, key := range itemListKeys {
		items, ok := payload[key].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if status, ok := row["status"].(string); ok && status != "" {
				counts[status]++
			}
		}
		if len(counts) > 0 {
			return counts
		}
	}

	return counts
}

// StuckContact is one stalled workflow contact, per the backend's
// determination.
type StuckContact struct {
	ContactID  string    `json:"contactId"`
	WorkflowID string    `json:"workflowId"`
	Step       string    `json:"step"`
	StuckSince time.Time `json:"stuckSince,omitzero"`
}

// StuckContactsFromJSON parses the stuck-contact diagnostics payload.
func StuckContactsFromJSON(body []byte) ([]StuckContact, error) {
	var payload struct {
		Contacts []struct {
			ContactID  string `json:"contact_id"`
			WorkflowID string `json:"workflow_id"`
			Step       string `json:"step"`
			StuckSince int64  `json:"stuck_since"`
		} `json:"contacts"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse stuck contacts payload: %w", err)
	}

	contacts := make([]StuckContact, 0, len(payload.Contacts))
	for _, row := range payload.Contacts {
		contact := StuckContact{
			ContactID:  row.ContactID,
			WorkflowID: row.WorkflowID,
			Step:       row.Step,
		}
		if row.StuckSince > 0 {
			contact.StuckSince = time.UnixMilli(row.StuckSince).UTC()
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// AutomationLogEntry is one automation pipeline log line.
type AutomationLogEntry struct {
	Timestamp  time.Time `json:"timestamp,omitzero"`
	Level      string    `json:"level"`
	WorkflowID string    `json:"workflowId,omitempty"`
	Message    string    `json:"message"`
}

// AutomationLogsFromJSON parses the automation log payload.
func AutomationLogsFromJSON(body []byte) ([]AutomationLogEntry, error) {
	var payload struct {
		Logs []struct {
			Timestamp  int64  `json:"timestamp"`
			Level      string `json:"level"`
			WorkflowID string `json:"workflow_id"`
			Message    string `json:"message"`
		} `json:"logs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse automation logs payload: %w", err)
	}

	logs := make([]AutomationLogEntry, 0, len(payload.Logs))
	for _, row := range payload.Logs {
		entry := AutomationLogEntry{
			Level:      row.Level,
			WorkflowID: row.WorkflowID,
			Message:    row.Message,
		}
		if row.Timestamp > 0 {
			entry.Timestamp = time.UnixMilli(row.Timestamp).UTC()
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
