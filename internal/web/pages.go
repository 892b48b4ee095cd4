package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// indexPage renders one upload form per import kind.
func indexPage(kinds []core.KindInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>ERP import</title></head><body><h1>ERP import</h1>`)
		for _, k := range kinds {
			b.WriteString(`<h2>` + templ.EscapeString(k.Label) + `</h2><p>` + templ.EscapeString(k.Description) + `</p>`)
			b.WriteString(`<form method="post" enctype="multipart/form-data" action="/api/imports/` + templ.EscapeString(k.Key) + `">`)
			b.WriteString(`<input type="file" name="file" accept=".csv,.xlsx" required>`)
			b.WriteString(`<input type="hidden" name="redirect" value="report">`)
			b.WriteString(`<button type="submit">Import</button></form>`)
			b.WriteString(`<p><small>Columns: ` + templ.EscapeString(strings.Join(k.Fields, ", ")) + `</small></p>`)
		}
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
