package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New("k3y")
	c.BaseURL = srv.URL
	c.Client = srv.Client()
	return c
}

func TestSearchMoviesOptionalFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "Test", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "k3y", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[
			{"id":1,"title":"Test Movie","popularity":12.5,"vote_count":0,"release_date":"2001-02-03","video":false},
			{"id":2,"title":"Bare"}
		]}`))
	})

	page, err := c.SearchMovies(context.Background(), "Test", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Results, 2)

	full := page.Results[0]
	require.NotNil(t, full.Popularity)
	assert.Equal(t, 12.5, *full.Popularity)
	require.NotNil(t, full.VoteCount)
	assert.Zero(t, *full.VoteCount)
	require.NotNil(t, full.Video)
	assert.False(t, *full.Video)

	bare := page.Results[1]
	assert.Nil(t, bare.Popularity)
	assert.Nil(t, bare.ReleaseDate)
	assert.Nil(t, bare.Video)
}

func TestBearerTokenAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer aaa.bbb.ccc", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"page":1,"total_pages":0,"results":[]}`))
	})
	c.APIKey = "aaa.bbb.ccc"
	_, err := c.SearchMovies(context.Background(), "x", 1)
	require.NoError(t, err)
}

func TestMovieDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/949", r.URL.Path)
		assert.Equal(t, "external_ids", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{"id":949,"title":"Heat","release_date":"1995-12-15","runtime":170,
			"genres":[{"id":80,"name":"Crime"},{"id":18,"name":"Drama"}],
			"external_ids":{"imdb_id":"tt0113277"}}`))
	})
	m, err := c.MovieDetails(context.Background(), 949)
	require.NoError(t, err)
	assert.Equal(t, "tt0113277", m.IMDbID())
	assert.Equal(t, []string{"Crime", "Drama"}, m.GenreNames())
	require.NotNil(t, m.Runtime)
	assert.Equal(t, 170, *m.Runtime)
}

func TestNon2xxIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.SearchMovies(context.Background(), "x", 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = c.MovieDetails(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingAPIKey(t *testing.T) {
	_, err := New("").SearchMovies(context.Background(), "x", 1)
	assert.Error(t, err)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "N/A", PosterURL(""))
	assert.Equal(t, PosterBaseURL+"/abc.jpg", PosterURL("/abc.jpg"))
}

type failingProvider struct{ calls atomic.Int32 }

func (f *failingProvider) SearchMovies(context.Context, string, int) (SearchPage, error) {
	f.calls.Add(1)
	return SearchPage{}, errors.New("boom")
}

func (f *failingProvider) MovieDetails(context.Context, int64) (Movie, error) {
	f.calls.Add(1)
	return Movie{}, ErrNotFound
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	fp := &failingProvider{}
	b := NewBreaker(fp, BreakerConfig{FailureThreshold: 2})

	for i := 0; i < 2; i++ {
		_, err := b.SearchMovies(context.Background(), "x", 1)
		require.Error(t, err)
	}
	_, err := b.SearchMovies(context.Background(), "x", 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), fp.calls.Load())
	assert.Equal(t, gobreaker.StateOpen, b.State())
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	fp := &failingProvider{}
	b := NewBreaker(fp, BreakerConfig{FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		_, err := b.MovieDetails(context.Background(), 5)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(3), fp.calls.Load())
}

type missingSearchProvider struct{ failingProvider }

func (m *missingSearchProvider) SearchMovies(context.Context, string, int) (SearchPage, error) {
	m.calls.Add(1)
	return SearchPage{}, &StatusError{Endpoint: "/search/movie", StatusCode: http.StatusNotFound}
}

func TestBreakerCountsSearchNotFound(t *testing.T) {
	mp := &missingSearchProvider{}
	b := NewBreaker(mp, BreakerConfig{FailureThreshold: 1})
	_, err := b.SearchMovies(context.Background(), "x", 1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = b.SearchMovies(context.Background(), "x", 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(1), mp.calls.Load())
}
