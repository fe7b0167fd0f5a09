package routes

import (
	"bytes"
	"net/http"

	"movielog-server/internal/deps"
	"movielog-server/internal/export"
	pkghttpx "movielog-server/pkg/httpx"
)

// ExportLetterboxd handles GET /api/exportLetterboxd.
func ExportLetterboxd(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := dateRange(r, d.Clock())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid date range", err))
			return
		}
		rows, err := d.Store.ListBetween(r.Context(), start, end)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list viewings", err))
			return
		}
		var buf bytes.Buffer
		if err := export.WriteLetterboxd(&buf, rows); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to render csv", err))
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=letterboxd.csv")
		writeRaw(w, http.StatusOK, "text/csv; charset=utf-8", buf.String())
	}
}

// RSS handles GET /api/rss.
func RSS(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := dateRange(r, d.Clock())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid date range", err))
			return
		}
		body, err := cached(d, r, "rss", rangeKey(cacheRSSPref, start, end), func() (string, error) {
			rows, err := d.Store.ListBetween(r.Context(), start, end)
			if err != nil {
				return "", err
			}
			return export.RSS(d.Feed, rows, d.Clock())
		})
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to render feed", err))
			return
		}
		writeRaw(w, http.StatusOK, "application/rss+xml; charset=utf-8", body)
	}
}
