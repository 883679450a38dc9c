package controllers

import (
	"net/http"

	"github.com/dcode-github/listing_analytics/analytics"
)

// GetPropertyAnalytics reports listing counts for one day, ISO week or month.
func (h *Handler) GetPropertyAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := h.Aggregator.Aggregate(r.Context(), q.Get("groupBy"), analytics.Params{
			Date:  q.Get("date"),
			Year:  q.Get("year"),
			Month: q.Get("month"),
			Agent: q.Get("agent"),
		})
		if err != nil {
			h.fail(w, r, "property analytics", err, "Server Error")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
