package server

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"movielog-server/internal/deps"
	"movielog-server/internal/routes"
)

// Options tunes the middleware stack.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

type Server struct {
	deps.ServerDeps
	opts Options
}

func New(d deps.ServerDeps, opts Options) *Server {
	return &Server{ServerDeps: d, opts: opts}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps
	limit := s.rateLimit()
	auth := func(h http.HandlerFunc) http.Handler { return limit(routes.RequireAuth(sd, h)) }

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /api/{$}", routes.ListViewings(sd))
	mux.HandleFunc("GET /api/health", routes.Health(sd))
	mux.Handle("POST /api/searchMovie", limit(routes.SearchMovie(sd)))
	mux.Handle("POST /api/getMovieDetails", limit(routes.MovieDetails(sd)))
	mux.Handle("POST /api/newEntry", auth(routes.NewEntry(sd)))
	mux.HandleFunc("GET /api/entry/{id}", routes.GetEntry(sd))
	mux.Handle("PUT /api/entry/{id}", auth(routes.UpdateEntry(sd)))
	mux.HandleFunc("GET /api/exportLetterboxd", routes.ExportLetterboxd(sd))
	mux.HandleFunc("GET /api/rss", routes.RSS(sd))
	mux.HandleFunc("GET /api/charts", routes.Charts(sd))
	mux.Handle("GET /metrics", promhttp.Handler())

	return withCorrelationID(withLogging(withRecover(withSecurityHeaders(withCORS(s.opts.CORSAllowedOrigins)(mux)))))
}

// rateLimit limits provider-backed and write endpoints per client IP.
func (s *Server) rateLimit() func(http.Handler) http.Handler {
	if s.opts.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := s.opts.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(s.opts.RateLimitRequests, window)
}
