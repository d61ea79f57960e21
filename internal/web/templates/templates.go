// Package templates renders the HTMX partials served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/catalog/internal/core"
)

// ErrorAlert renders a dismissable error box with an optional action hint and
// the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		fmt.Fprintf(&b, `<span class="alert-code">%s</span>`, templ.EscapeString(code))
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportSummary renders the outcome of an import preview: counts, row errors,
// warnings and one toggle per conflict.
func ImportSummary(sess *core.ImportSession) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		res := sess.Result
		selected := core.Selection(sess.Selected)

		var b strings.Builder
		fmt.Fprintf(&b, `<section class="import-summary" id="import-%s">`, templ.EscapeString(sess.ID))
		fmt.Fprintf(&b, `<h2>%s</h2>`, templ.EscapeString(sess.FileName))
		fmt.Fprintf(&b, `<p class="counts"><span class="processed">%d processed</span> <span class="skipped">%d skipped</span></p>`,
			res.ProcessedRows, res.SkippedRows)

		if len(res.Errors) > 0 {
			b.WriteString(`<ul class="import-errors">`)
			for _, e := range res.Errors {
				fmt.Fprintf(&b, `<li data-kind="%s">%s</li>`, templ.EscapeString(string(e.Kind)), templ.EscapeString(e.Error()))
			}
			b.WriteString(`</ul>`)
		}

		if len(res.Warnings) > 0 {
			b.WriteString(`<ul class="import-warnings">`)
			for _, wn := range res.Warnings {
				fmt.Fprintf(&b, `<li>row %d: %s</li>`, wn.Row, templ.EscapeString(wn.Message))
			}
			b.WriteString(`</ul>`)
		}

		if len(res.Conflicts) > 0 {
			b.WriteString(`<ul class="import-conflicts">`)
			for _, c := range res.Conflicts {
				checked := ""
				if selected.Has(c.ID) {
					checked = " checked"
				}
				fmt.Fprintf(&b,
					`<li><label><input type="checkbox" hx-post="/api/import/%s/conflicts/%s/toggle" hx-target="#import-%s" hx-swap="outerHTML"%s> product %s: %s (rows %s)</label></li>`,
					templ.EscapeString(sess.ID), templ.EscapeString(c.ID), templ.EscapeString(sess.ID), checked,
					templ.EscapeString(c.ProductID), templ.EscapeString(strings.Join(c.DifferingOptions, ", ")), joinInts(c.Rows),
				)
			}
			b.WriteString(`</ul>`)
		}

		disabled := ""
		if core.CanProceed(&res, selected) != nil {
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<button hx-post="/api/import/%s/proceed"%s>Proceed</button>`, templ.EscapeString(sess.ID), disabled)
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
