package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// PosterBaseURL prefixes poster_path values for thumbnails.
	PosterBaseURL = "https://image.tmdb.org/t/p/w92"
)

// ErrNotFound is returned when TMDB answers 404 for a movie id.
var ErrNotFound = errors.New("tmdb: not found")

// StatusError is a non-2xx response from TMDB.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s status %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Provider is the movie metadata source the search and details endpoints use.
type Provider interface {
	SearchMovies(ctx context.Context, query string, page int) (SearchPage, error)
	MovieDetails(ctx context.Context, id int64) (Movie, error)
}

type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client
}

var _ Provider = (*Client)(nil)

func New(apiKey string) *Client {
	return &Client{APIKey: apiKey, BaseURL: DefaultBaseURL, Client: &http.Client{Timeout: 15 * time.Second}}
}

// SearchPage is one page of /search/movie.
type SearchPage struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []SearchItem `json:"results"`
}

// SearchItem is a provider search result. Optional numeric fields are
// pointers so a missing value is distinguishable from zero.
type SearchItem struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	Popularity    *float64 `json:"popularity,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	VoteCount     *int64   `json:"vote_count,omitempty"`
	ReleaseDate   *string  `json:"release_date,omitempty"`
	Video         *bool    `json:"video,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ExternalIDs struct {
	ImdbID string `json:"imdb_id"`
}

// Movie is the /movie/{id} payload with external ids appended.
type Movie struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	ReleaseDate string       `json:"release_date"`
	Overview    string       `json:"overview"`
	PosterPath  string       `json:"poster_path"`
	Runtime     *int         `json:"runtime"`
	Genres      []Genre      `json:"genres"`
	ImdbID      string       `json:"imdb_id"`
	ExternalIDs *ExternalIDs `json:"external_ids,omitempty"`
}

// IMDbID prefers the top-level imdb_id and falls back to external_ids.
func (m Movie) IMDbID() string {
	if m.ImdbID != "" {
		return m.ImdbID
	}
	if m.ExternalIDs != nil {
		return m.ExternalIDs.ImdbID
	}
	return ""
}

func (m Movie) GenreNames() []string {
	out := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		out = append(out, g.Name)
	}
	return out
}

// PosterURL builds a thumbnail URL, or "N/A" when there is no poster.
func PosterURL(path string) string {
	if path == "" {
		return "N/A"
	}
	return PosterBaseURL + path
}

// SearchMovies fetches a single page of title search results.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (SearchPage, error) {
	var out SearchPage
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")
	err := c.get(ctx, "/search/movie", q, &out)
	return out, err
}

// MovieDetails fetches one movie including its external ids.
func (c *Client) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	var out Movie
	q := url.Values{}
	q.Set("append_to_response", "external_ids")
	err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	if c.APIKey == "" {
		return fmt.Errorf("missing TMDB API key")
	}
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + path)
	if err != nil {
		return err
	}
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	// v4 read access tokens are JWTs sent as bearer; v3 keys go in the query.
	bearer := strings.Count(c.APIKey, ".") == 2
	if !bearer {
		q.Set("api_key", c.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("tmdb %s decode: %w", path, err)
	}
	return nil
}
