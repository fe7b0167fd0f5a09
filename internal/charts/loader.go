package charts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"movielog-server/internal/model"
)

// ErrStale is returned by Loader.Load when a newer load superseded it.
var ErrStale = errors.New("charts: superseded by a newer load")

// Source fetches viewings in an inclusive date range.
type Source interface {
	Fetch(ctx context.Context, start, end model.Date) ([]model.Viewing, error)
}

// Loader builds dashboards from a Source. Starting a load cancels the
// previous one, and a result is only delivered if no newer load started
// meanwhile, so results are never applied out of order.
type Loader struct {
	src  Source
	opts Options

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewLoader(src Source, opts Options) *Loader {
	return &Loader{src: src, opts: opts}
}

func (l *Loader) begin(ctx context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.gen++
	return ctx, l.gen
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

// Generation is the id of the most recently started load.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Load fetches f's date range and builds the dashboard.
func (l *Loader) Load(ctx context.Context, f Filter) (Dashboard, error) {
	ctx, gen := l.begin(ctx)
	records, err := l.src.Fetch(ctx, f.Start, f.End)
	if !l.current(gen) {
		return Dashboard{}, ErrStale
	}
	if err != nil {
		return Dashboard{}, err
	}
	return Build(Dedupe(records), f, l.opts), nil
}

// Close cancels any in-flight load.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// HTTPSource reads viewings from a running server's GET /api/ endpoint.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (s *HTTPSource) Fetch(ctx context.Context, start, end model.Date) ([]model.Viewing, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, err
	}
	u = u.JoinPath("api/")
	q := u.Query()
	if !start.IsZero() {
		q.Set("startDate", start.String())
	}
	if !end.IsZero() {
		q.Set("endDate", end.String())
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viewings fetch status %d", resp.StatusCode)
	}
	var out []model.Viewing
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode viewings: %w", err)
	}
	return out, nil
}
