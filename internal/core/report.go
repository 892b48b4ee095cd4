package core

// report.go groups the batch log for presentation.
//
// Entries are grouped twice, by source line and by field. Groups and the
// entries inside each group keep the order in which they were logged.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ReportEntry is one log entry as shown in a report.
type ReportEntry struct {
	Line       string `json:"line"`
	LineLabel  string `json:"line_label"`
	Field      string `json:"field"`
	FieldLabel string `json:"field_label"`
	Value      string `json:"value"`
	Message    string `json:"message"`
	Reset      bool   `json:"reset"`
}

// LineGroup holds the entries of one source line.
type LineGroup struct {
	Line    string        `json:"line"`
	Label   string        `json:"label"` // "Line 3 (Acme ID 42)" once the record exists
	Entries []ReportEntry `json:"entries"`
}

// FieldGroup holds the entries of one field.
type FieldGroup struct {
	Field   string        `json:"field"`
	Label   string        `json:"label"`
	Entries []ReportEntry `json:"entries"`
}

// Report is the grouped log of a batch.
type Report struct {
	TokensUsed int          `json:"tokens_used"`
	Lines      []LineGroup  `json:"lines"`
	Fields     []FieldGroup `json:"fields"`
}

// ResetCount returns how many entries discarded data.
func (r Report) ResetCount() int {
	n := 0
	for _, g := range r.Fields {
		for _, e := range g.Entries {
			if e.Reset {
				n++
			}
		}
	}
	return n
}

// LineLabel returns "Line N", followed by the created record when the row
// has been imported.
func LineLabel(row Row) string {
	line := row.Line()
	if line == "" {
		line = "unknown"
	}
	label := "Line " + line
	if id := idValue(row["id"]); id != 0 {
		label += fmt.Sprintf(" (%s ID %d)", row.Str("display_name"), id)
	}
	return label
}

// FieldLabel returns the display label of an "<entity>,<field>" key.
// Labels come from the reference store and are memoized; unknown fields fall
// back to "<field> (<entity>)".
func (c *Cache) FieldLabel(ctx context.Context, field string) string {
	if label, ok := c.fieldLabels[field]; ok {
		return label
	}

	entity, name, _ := strings.Cut(field, ",")
	label := fmt.Sprintf("%s (%s)", name, entity)
	if c.labels != nil {
		found, ok, err := c.labels.FieldLabel(ctx, entity, name)
		switch {
		case err != nil:
			slog.Warn("field label lookup failed", "field", field, "error", err)
		case ok && found != "":
			label = found
		}
	}
	c.fieldLabels[field] = label
	return label
}

// GroupLogs builds the report of the cache log.
func GroupLogs(ctx context.Context, c *Cache) Report {
	report := Report{TokensUsed: c.TokensUsed}

	lineIdx := make(map[string]int)
	fieldIdx := make(map[string]int)

	for _, e := range c.Logs {
		entry := ReportEntry{
			Line:      e.Line(),
			LineLabel: LineLabel(e.Row),
			Field:     e.Field,
			Value:     e.Value,
			Message:   e.Message,
			Reset:     e.Reset,
		}
		if e.Field != "" {
			entry.FieldLabel = c.FieldLabel(ctx, e.Field)
		}

		if entry.Line != "" {
			i, ok := lineIdx[entry.Line]
			if !ok {
				i = len(report.Lines)
				lineIdx[entry.Line] = i
				report.Lines = append(report.Lines, LineGroup{Line: entry.Line})
			}
			report.Lines[i].Label = entry.LineLabel
			report.Lines[i].Entries = append(report.Lines[i].Entries, entry)
		}

		if e.Field != "" {
			i, ok := fieldIdx[e.Field]
			if !ok {
				i = len(report.Fields)
				fieldIdx[e.Field] = i
				report.Fields = append(report.Fields, FieldGroup{Field: e.Field, Label: entry.FieldLabel})
			}
			report.Fields[i].Entries = append(report.Fields[i].Entries, entry)
		}
	}
	return report
}
