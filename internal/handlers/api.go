package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"retention-dashboard/internal/errors"
	"retention-dashboard/internal/models"
	"retention-dashboard/internal/observability"
	"retention-dashboard/internal/rowsource"
	"retention-dashboard/internal/services"
)

const cacheMaxAge = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleData serves the full retention report. Optional query parameters:
// from/to (inclusive YYYY-MM-DD bounds), product (first-order membership
// filter) and shop (narrows the results map to one slice; the shop list and
// catalogue stay complete either way).
func (h *APIHandlers) HandleData(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	q := r.URL.Query()

	report, err := h.analytics.Report(r.Context(), services.Filters{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Product: q.Get("product"),
	})
	if err != nil {
		if stderrors.Is(err, rowsource.ErrUnavailable) {
			errors.WriteError(w, h.logger, errors.ServiceUnavailableWrap(err, "Row source unavailable"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to compute report"), requestID)
		return
	}

	if shop := q.Get("shop"); shop != "" {
		if !slices.Contains(report.Shops, shop) {
			errors.WriteError(w, h.logger, errors.BadRequest("Unknown shop"), requestID)
			return
		}
		report.Results = map[string]models.MetricsBundle{shop: report.Results[shop]}
	}

	errors.WriteSuccessWithHeaders(w, report, map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
