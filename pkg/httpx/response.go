package httpx

import (
	"net/http"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	pkgrequestctx "movielog-server/pkg/requestctx"
)

var exposeErrors atomic.Bool

// ExposeErrors controls whether the wrapped error text is sent to clients.
// Only enabled in development.
func ExposeErrors(on bool) { exposeErrors.Store(on) }

// WriteJSON writes a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError standardizes error responses and logs with correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, he *HTTPError) {
	status := logError(w, r, he)
	body := map[string]any{
		"code":           he.Code,
		"message":        he.Message,
		"correlation_id": pkgrequestctx.CorrelationID(r.Context()),
	}
	if he.Details != nil {
		body["details"] = he.Details
	}
	if exposeErrors.Load() && he.Err != nil {
		body["cause"] = he.Err.Error()
	}
	WriteJSON(w, status, map[string]any{"error": body})
}

// WriteLegacyError answers with the flat {"Error": msg} shape the browser
// form client expects from write endpoints.
func WriteLegacyError(w http.ResponseWriter, r *http.Request, he *HTTPError) {
	status := logError(w, r, he)
	WriteJSON(w, status, map[string]string{"Error": he.Message})
}

func logError(w http.ResponseWriter, r *http.Request, he *HTTPError) int {
	cid := pkgrequestctx.CorrelationID(r.Context())
	if cid != "" {
		w.Header().Set("X-Correlation-Id", cid)
	}
	status := he.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Str("correlation_id", cid).Str("code", he.Code).Int("status", status).Err(he.Err).Msg(he.Message)
	return status
}
