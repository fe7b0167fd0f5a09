package routes

import (
	"net/http"
	"strconv"

	"movielog-server/internal/charts"
	"movielog-server/internal/deps"
	pkghttpx "movielog-server/pkg/httpx"
)

// Charts handles GET /api/charts?startDate&endDate&title&threshold.
func Charts(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := dateRange(r, d.Clock())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid date range", err))
			return
		}
		opts := d.Charts
		if ts := r.URL.Query().Get("threshold"); ts != "" {
			n, err := strconv.Atoi(ts)
			if err != nil || n < 0 {
				pkghttpx.WriteError(w, r, pkghttpx.BadRequest("threshold must be a non-negative integer", err))
				return
			}
			opts.Threshold = n
		}
		rows, err := d.Store.ListBetween(r.Context(), start, end)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list viewings", err))
			return
		}
		f := charts.Filter{Start: start, End: end, Title: r.URL.Query().Get("title")}
		pkghttpx.WriteJSON(w, http.StatusOK, charts.Build(charts.Dedupe(rows), f, opts))
	}
}
