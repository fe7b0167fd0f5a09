package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"movielog-server/internal/deps"
	"movielog-server/internal/metrics"
	"movielog-server/internal/model"
	"movielog-server/internal/search"
	pkghttpx "movielog-server/pkg/httpx"
	"movielog-server/pkg/tmdb"
)

type searchResponse struct {
	Search       []search.Item `json:"Search"`
	TotalResults string        `json:"totalResults"`
	Response     string        `json:"Response"`
	Error        string        `json:"Error,omitempty"`
}

// providerError maps provider failures onto the HTTP taxonomy: an open or
// saturated breaker is 503, anything else upstream is a 500. Only the
// details lookup treats an upstream 404 as an unknown tmdbID.
func providerError(msg string, err error, notFoundIsClient bool) *pkghttpx.HTTPError {
	switch {
	case notFoundIsClient && errors.Is(err, tmdb.ErrNotFound):
		return pkghttpx.NotFound("movie not found", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkghttpx.Unavailable("movie provider temporarily unavailable", err)
	}
	return pkghttpx.Internal(msg, err)
}

// SearchMovie handles POST /api/searchMovie.
func SearchMovie(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _, err := decodeEnvelope(r)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid search request", err))
			return
		}
		q, err := search.ParseQuery(raw)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest(err.Error(), err))
			return
		}
		res, err := d.Search.Search(r.Context(), q.Title, q.Criteria)
		if errors.Is(err, search.ErrTitleRequired) {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("title is required", err))
			return
		}
		if err != nil {
			pkghttpx.WriteError(w, r, providerError("movie search failed", err, false))
			return
		}
		out := searchResponse{Search: res.Items, TotalResults: strconv.Itoa(res.TotalCount), Response: "True"}
		if res.TotalCount == 0 {
			out.Response = "False"
			out.Error = "Movie not found!"
		}
		pkghttpx.WriteJSON(w, http.StatusOK, out)
	}
}

type detailsRequest struct {
	TmdbID json.RawMessage `json:"tmdbID"`
}

// id accepts the tmdbID as a JSON number or a numeric string.
func (d detailsRequest) id() (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(d.TmdbID)), `"`)
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

type detailsResponse struct {
	Title            string               `json:"Title"`
	Year             string               `json:"Year"`
	Released         string               `json:"Released"`
	Runtime          string               `json:"Runtime"`
	Genre            string               `json:"Genre"`
	Plot             string               `json:"Plot"`
	Poster           string               `json:"Poster"`
	ImdbID           string               `json:"imdbID"`
	TmdbID           int64                `json:"tmdbID"`
	MovieURL         string               `json:"movieURL"`
	Response         string               `json:"Response"`
	FirstViewing     bool                 `json:"firstViewing"`
	PreviousViewings []model.PriorViewing `json:"previousViewings,omitempty"`
	PreviousGenre    string               `json:"previousGenre,omitempty"`
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func reshapeDetails(m tmdb.Movie) detailsResponse {
	out := detailsResponse{
		Title:    m.Title,
		Released: orNA(m.ReleaseDate),
		Runtime:  "N/A",
		Genre:    orNA(strings.Join(m.GenreNames(), ", ")),
		Plot:     orNA(m.Overview),
		Poster:   tmdb.PosterURL(m.PosterPath),
		ImdbID:   m.IMDbID(),
		TmdbID:   m.ID,
		Response: "True",
	}
	if len(m.ReleaseDate) >= 4 {
		out.Year = m.ReleaseDate[:4]
	}
	if m.Runtime != nil && *m.Runtime > 0 {
		out.Runtime = fmt.Sprintf("%d min", *m.Runtime)
	}
	if out.ImdbID != "" {
		out.MovieURL = "http://www.imdb.com/title/" + out.ImdbID + "/"
	} else {
		out.MovieURL = "https://www.themoviedb.org/movie/" + strconv.FormatInt(m.ID, 10)
	}
	return out
}

// reference is the token prior viewings of this movie carry in movieURL.
func (d detailsResponse) reference() string {
	if d.ImdbID != "" {
		return d.ImdbID
	}
	return strings.TrimPrefix(d.MovieURL, "https://www.")
}

// samePriorMovie keeps the viewings whose URL names exactly this movie.
func samePriorMovie(prior []model.PriorViewing, ref string) []model.PriorViewing {
	out := prior[:0]
	for _, p := range prior {
		if model.ReferencesMovie(p.MovieURL, ref) {
			p.FirstViewing = false
			out = append(out, p)
		}
	}
	return out
}

// MovieDetails handles POST /api/getMovieDetails.
func MovieDetails(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _, err := decodeEnvelope(r)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid details request", err))
			return
		}
		var req detailsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid details request", err))
			return
		}
		id, err := req.id()
		if err != nil || id <= 0 {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("tmdbID is required", err))
			return
		}

		start := time.Now()
		movie, err := d.Provider.MovieDetails(r.Context(), id)
		metrics.RecordProviderCall("details", time.Since(start), err)
		if err != nil {
			pkghttpx.WriteError(w, r, providerError("movie details failed", err, true))
			return
		}
		out := reshapeDetails(movie)

		prior, err := d.Store.FindByReference(r.Context(), out.reference())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to look up prior viewings", err))
			return
		}
		prior = samePriorMovie(prior, out.reference())
		out.FirstViewing = len(prior) == 0
		if !out.FirstViewing {
			out.PreviousViewings = prior
			out.PreviousGenre = prior[0].MovieGenre
		}
		pkghttpx.WriteJSON(w, http.StatusOK, out)
	}
}
