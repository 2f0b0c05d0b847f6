package templates

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// IndicatorItem is one summary figure on the indicators panel.
type IndicatorItem struct {
	Key   string
	Label string
	Value string
}

// IndicatorsData feeds the indicators panel under the ledger.
type IndicatorsData struct {
	VersionID  string
	Indicators []IndicatorItem
	ComputedAt string
}

// IndicatorsPanel renders the indicator cards, swapped in over HTMX.
func IndicatorsPanel(data IndicatorsData) templ.Component {
	return render(func(b *strings.Builder) {
		// The panel replaces itself so the refresh attributes survive each swap.
		fmt.Fprintf(b,
			`<div id="indicators-panel" class="indicators" hx-get="/versions/%s/indicators" hx-trigger="ledger-saved from:body" hx-swap="outerHTML">`,
			esc(data.VersionID))
		for _, ind := range data.Indicators {
			fmt.Fprintf(b,
				`<div class="indicator" data-key="%s"><span class="indicator-label">%s</span><span class="indicator-value">%s</span></div>`,
				esc(ind.Key), esc(ind.Label), esc(ind.Value))
		}
		if data.ComputedAt != "" {
			fmt.Fprintf(b, `<div class="indicator-meta">更新于 %s</div>`, esc(data.ComputedAt))
		}
		fmt.Fprintf(b,
			`<button class="btn btn-small" hx-post="/versions/%s/recalc" hx-target="#indicators-panel" hx-swap="outerHTML">重新计算</button>`,
			esc(data.VersionID))
		b.WriteString(`</div>`)
	})
}
