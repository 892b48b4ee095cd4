// Package report renders the grouped log of an import batch.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpimport/internal/core"
)

const pageStyle = `body{font-family:sans-serif;margin:2em;max-width:60em}` +
	`li.reset{color:red}li.kept{color:black}small{color:#555}`

// Body renders the report as an HTML fragment: a legend, the resolver token
// count, then the entries per line and per field. Entries whose value was
// discarded are red.
func Body(rep core.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		bw := &htmlWriter{w: w}
		bw.raw(`<p><small>For the logs in <span style="color: red">red</span>, the data was <b>not imported</b></small><br/>`)
		bw.raw(fmt.Sprintf(`<small><b>%d</b> resolver tokens were used</small></p>`, rep.TokensUsed))

		bw.raw(`<h1>Logs per line</h1>`)
		for _, g := range rep.Lines {
			bw.raw(`<h3>`)
			bw.text(g.Label)
			bw.raw(`</h3><ul>`)
			for _, e := range g.Entries {
				entry(bw, e.FieldLabel, e)
			}
			bw.raw(`</ul>`)
		}

		bw.raw(`<h1>Logs per field</h1>`)
		for _, g := range rep.Fields {
			bw.raw(`<h3>`)
			bw.text(g.Label)
			bw.raw(`</h3><ul>`)
			for _, e := range g.Entries {
				entry(bw, e.LineLabel, e)
			}
			bw.raw(`</ul>`)
		}
		return bw.err
	})
}

func entry(bw *htmlWriter, label string, e core.ReportEntry) {
	class := "kept"
	if e.Reset {
		class = "reset"
	}
	bw.raw(`<li class="` + class + `"><b>`)
	bw.text(label)
	bw.raw(`</b>: <b>`)
	bw.text(e.Value)
	bw.raw(`</b> - `)
	bw.text(e.Message)
	bw.raw(`</li>`)
}

// Page renders a standalone HTML document for a finished batch.
func Page(res *core.BatchResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		bw := &htmlWriter{w: w}
		title := fmt.Sprintf("Import %s %s", res.Kind, res.ID)

		bw.raw(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
		bw.text(title)
		bw.raw(`</title><style>` + pageStyle + `</style></head><body><h1>`)
		bw.text(title)
		bw.raw(`</h1>`)
		bw.raw(fmt.Sprintf(`<p>%d rows, %d created, %d rejected, %d values discarded</p>`,
			res.Rows, len(res.Created), len(res.Rejected), res.Report.ResetCount()))
		if bw.err != nil {
			return bw.err
		}
		if err := Body(res.Report).Render(ctx, w); err != nil {
			return err
		}
		bw.raw(`</body></html>`)
		return bw.err
	})
}

// Text writes a plain text version of the per-line logs. Discarded values
// are marked with "!".
func Text(w io.Writer, rep core.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d resolver tokens were used\n", rep.TokensUsed)
	for _, g := range rep.Lines {
		fmt.Fprintf(&b, "\n%s\n", g.Label)
		for _, e := range g.Entries {
			mark := " "
			if e.Reset {
				mark = "!"
			}
			fmt.Fprintf(&b, " %s %s: %s - %s\n", mark, e.FieldLabel, e.Value, e.Message)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// htmlWriter keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}
