package handlers

import (
	"encoding/json"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/rowsource"
	"retention-dashboard/internal/services"
)

var summaryTableTemplate = template.Must(template.New("summaryTable").Parse(`
<div id="summary-content">
<table class="modern-table">
<thead><tr><th>Shop</th><th>Customers</th><th>Repeat rate</th><th>Orders</th><th>Revenue</th><th>Avg LTV</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Shop}}</td>
<td>{{.TotalCustomers}}</td>
<td>{{printf "%.1f" .RepeatRate}}%</td>
<td>{{.TotalOrders}}</td>
<td>&euro;{{.TotalRevenue}}</td>
<td>&euro;{{.AvgLtv}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type summaryRow struct {
	Shop string
	models.MetricsBundle
}

func renderSummaryTable(report *models.Report) (string, error) {
	rows := make([]summaryRow, 0, len(report.Shops))
	for _, shop := range report.Shops {
		rows = append(rows, summaryRow{Shop: shop, MetricsBundle: report.Results[shop]})
	}

	var buf strings.Builder
	err := summaryTableTemplate.Execute(&buf, map[string]any{"Rows": rows})
	return buf.String(), err
}

// HandleReport recomputes the report for the current filter signals and
// pushes it back: the full bundle as datastar signals for the charts, plus a
// rendered per-shop summary table fragment.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	q := r.URL.Query()

	report, err := h.analytics.Report(r.Context(), services.Filters{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Product: q.Get("product"),
	})
	if err != nil {
		if stderrors.Is(err, rowsource.ErrUnavailable) {
			h.logger.Warn("report push skipped, source unavailable", "error", err)
		} else {
			h.logger.Error("compute report", "error", err)
		}
		sse.PatchElements(`<div id="summary-content">Data source unavailable, try again later.</div>`)
		return
	}

	signals, err := json.Marshal(map[string]any{"report": report})
	if err != nil {
		h.logger.Error("marshal report signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	html, err := renderSummaryTable(report)
	if err != nil {
		h.logger.Error("render summary table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
