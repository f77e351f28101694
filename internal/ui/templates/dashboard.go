package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the page shell. All data arrives through /sse/report as
// datastar signals; the page itself is static.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Customer Retention Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1a1a2e; }
h1 { margin-bottom: 0.25rem; }
.subtitle { color: #666; margin-bottom: 1.5rem; }
.filters { display: flex; gap: 1rem; margin-bottom: 1.5rem; align-items: end; }
.filters label { display: flex; flex-direction: column; font-size: 0.85rem; gap: 0.25rem; }
.modern-table { border-collapse: collapse; width: 100%; }
.modern-table th, .modern-table td { padding: 0.5rem 0.75rem; border-bottom: 1px solid #e0e0e0; text-align: left; }
.modern-table th { background: #f5f5f7; }
section { margin-bottom: 2rem; }
</style>
</head>
<body data-signals="{report: null, from: '', to: '', product: ''}" data-on-load="@get('/sse/report')">
<h1>Customer Retention Dashboard</h1>
<p class="subtitle">Repeat purchases, cohort retention, time to second order and lifetime value per shop</p>

<div class="filters">
<label>From <input type="date" data-bind-from></label>
<label>To <input type="date" data-bind-to></label>
<label>First-order product <input type="text" data-bind-product placeholder="any"></label>
<button data-on-click="@get('/sse/report?from='+$from+'&to='+$to+'&product='+encodeURIComponent($product))">Apply</button>
</div>

<section>
<h2>Shop overview</h2>
<div id="summary-content">Loading&hellip;</div>
</section>

<section>
<h2>Monthly revenue &amp; orders</h2>
<div id="monthly-content" data-text="$report ? 'Signals loaded for ' + $report.shops.length + ' shop slices' : 'Loading…'"></div>
</section>

<section>
<h2>Cohort retention</h2>
<div id="cohorts-content"></div>
</section>

<section>
<h2>Product retention &amp; journey</h2>
<div id="products-content"></div>
</section>

<section>
<h2>Lifetime value</h2>
<div id="ltv-content"></div>
</section>
</body>
</html>
`
