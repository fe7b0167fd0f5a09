package routes

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"movielog-server/internal/deps"
	"movielog-server/internal/metrics"
	"movielog-server/internal/model"
	pkghttpx "movielog-server/pkg/httpx"
	pkgrequestctx "movielog-server/pkg/requestctx"
)

const (
	maxBodyBytes = 1 << 20

	headerProxyUser = "X-Authentik-Username"
	headerAPIKey    = "X-Api-Key"
)

var errEmptyPayload = errors.New("empty payload")

// envelope is the browser client's request body: the payload travels as a
// JSON string in "json", with an optional apiKey beside it.
type envelope struct {
	JSON   *string `json:"json"`
	APIKey string  `json:"apiKey"`
}

// readBody reads and restores the request body so later readers see it again.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(b) > maxBodyBytes {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	r.Body = io.NopCloser(bytes.NewReader(b))
	return b, nil
}

func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded"
}

// decodeEnvelope returns the inner payload and body apiKey. A JSON body
// without a "json" field is treated as the payload itself.
func decodeEnvelope(r *http.Request) (payload []byte, apiKey string, err error) {
	body, err := readBody(r)
	if err != nil {
		return nil, "", err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", errEmptyPayload
	}
	if isForm(r) {
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, "", fmt.Errorf("invalid form body: %w", err)
		}
		if s := vals.Get("json"); s != "" {
			return []byte(s), vals.Get("apiKey"), nil
		}
		return nil, vals.Get("apiKey"), errEmptyPayload
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", fmt.Errorf("invalid json body: %w", err)
	}
	if env.JSON != nil {
		return []byte(*env.JSON), env.APIKey, nil
	}
	return body, env.APIKey, nil
}

// authenticate accepts the reverse proxy's username header, or the shared
// API key from the X-Api-Key header, the apiKey query parameter or the
// apiKey body field.
func authenticate(r *http.Request, validKey string) (string, bool) {
	if user := strings.TrimSpace(r.Header.Get(headerProxyUser)); user != "" {
		return user, true
	}
	if validKey == "" {
		return "", false
	}
	key := r.Header.Get(headerAPIKey)
	if key == "" {
		key = r.URL.Query().Get("apiKey")
	}
	if key == "" && r.Method != http.MethodGet {
		if _, bodyKey, err := decodeEnvelope(r); err == nil || errors.Is(err, errEmptyPayload) {
			key = bodyKey
		}
	}
	if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
		return "api-key", true
	}
	return "", false
}

// RequireAuth rejects requests without a credential before the wrapped
// handler parses anything.
func RequireAuth(d deps.ServerDeps, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authenticate(r, d.APIKey)
		if !ok {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("Unauthorized", nil))
			return
		}
		ctx := pkgrequestctx.WithPrincipal(r.Context(), principal)
		next(w, r.WithContext(ctx))
	}
}

// dateRange resolves startDate/endDate, falling back to the whole of ?year
// or the current year for whichever bound is missing.
func dateRange(r *http.Request, now time.Time) (model.Date, model.Date, error) {
	q := r.URL.Query()
	year := now.Year()
	if ys := strings.TrimSpace(q.Get("year")); ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil || y < 1000 || y > 9999 {
			return model.Date{}, model.Date{}, fmt.Errorf("invalid year %q", ys)
		}
		year = y
	}
	start, end := model.YearRange(year)
	if s := strings.TrimSpace(q.Get("startDate")); s != "" {
		d, err := model.ParseISODate(s)
		if err != nil {
			return model.Date{}, model.Date{}, err
		}
		start = d
	}
	if s := strings.TrimSpace(q.Get("endDate")); s != "" {
		d, err := model.ParseISODate(s)
		if err != nil {
			return model.Date{}, model.Date{}, err
		}
		end = d
	}
	if end.Before(start) {
		return model.Date{}, model.Date{}, fmt.Errorf("endDate %s is before startDate %s", end, start)
	}
	return start, end, nil
}

const (
	cacheNS           = "movielog:"
	cacheViewingsPref = cacheNS + "viewings:"
	cacheRSSPref      = cacheNS + "rss:"
)

func rangeKey(prefix string, start, end model.Date) string {
	return prefix + start.String() + ":" + end.String()
}

// cached serves key from the cache, or renders, stores and serves it.
func cached(d deps.ServerDeps, r *http.Request, route, key string, render func() (string, error)) (string, error) {
	ctx := r.Context()
	if d.Cache != nil {
		if v, ok := d.Cache.Get(ctx, key); ok {
			metrics.RecordCache(route, true)
			return v, nil
		}
		metrics.RecordCache(route, false)
	}
	v, err := render()
	if err != nil {
		return "", err
	}
	if d.Cache != nil {
		if err := d.Cache.Set(ctx, key, v, d.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return v, nil
}

// invalidateViewings drops every cached rendering of viewing data.
func invalidateViewings(d deps.ServerDeps, r *http.Request) {
	if d.Cache == nil {
		return
	}
	for _, p := range []string{cacheViewingsPref, cacheRSSPref} {
		if err := d.Cache.DeletePrefix(r.Context(), p); err != nil {
			log.Warn().Err(err).Str("prefix", p).Msg("cache invalidation failed")
		}
	}
}

func writeRaw(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
