package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpimport/internal/core"
)

func sampleReport() core.Report {
	reset := core.ReportEntry{
		Line: "3", LineLabel: "Line 3 (Jane ID 7)", Field: "partner,email", FieldLabel: "Email",
		Value: "jane<at>example", Message: "Invalid e-mail: bad", Reset: true,
	}
	kept := core.ReportEntry{
		Line: "4", LineLabel: "Line 4", Field: "partner,zip", FieldLabel: "Zip",
		Value: "7500", Message: "Zip code has 4 chars. In France, they have 5 chars.",
	}
	return core.Report{
		TokensUsed: 18,
		Lines: []core.LineGroup{
			{Line: "3", Label: reset.LineLabel, Entries: []core.ReportEntry{reset}},
			{Line: "4", Label: kept.LineLabel, Entries: []core.ReportEntry{kept}},
		},
		Fields: []core.FieldGroup{
			{Field: "partner,email", Label: "Email", Entries: []core.ReportEntry{reset}},
			{Field: "partner,zip", Label: "Zip", Entries: []core.ReportEntry{kept}},
		},
	}
}

func TestBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Body(sampleReport()).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<b>18</b> resolver tokens were used")
	assert.Contains(t, html, "<h3>Line 3 (Jane ID 7)</h3>")
	assert.Contains(t, html, `<li class="reset"><b>Email</b>: <b>jane&lt;at&gt;example</b> - Invalid e-mail: bad</li>`)
	assert.Contains(t, html, `<li class="kept"><b>Line 4</b>: <b>7500</b>`)
	assert.NotContains(t, html, "<at>")

	// Per line section comes first.
	assert.Less(t, strings.Index(html, "Logs per line"), strings.Index(html, "Logs per field"))
}

func TestPage(t *testing.T) {
	res := &core.BatchResult{
		ID:       "b-1",
		Kind:     "partners",
		Rows:     3,
		Created:  []core.CreatedRecord{{Line: "3", ID: 7, DisplayName: "Jane"}},
		Rejected: []string{"2"},
		Report:   sampleReport(),
	}

	var buf bytes.Buffer
	require.NoError(t, Page(res).Render(context.Background(), &buf))
	html := buf.String()

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Import partners b-1</title>")
	assert.Contains(t, html, "3 rows, 1 created, 1 rejected, 1 values discarded")
	assert.True(t, strings.HasSuffix(html, "</body></html>"))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleReport()))

	assert.Equal(t, "18 resolver tokens were used\n"+
		"\nLine 3 (Jane ID 7)\n"+
		" ! Email: jane<at>example - Invalid e-mail: bad\n"+
		"\nLine 4\n"+
		"   Zip: 7500 - Zip code has 4 chars. In France, they have 5 chars.\n",
		buf.String())
}
