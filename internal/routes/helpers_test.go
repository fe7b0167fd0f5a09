package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movielog-server/pkg/tmdb"
)

func TestDateRangeDefaultsToCurrentYear(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end, err := dateRange(httptest.NewRequest(http.MethodGet, "/api/", nil), now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", start.String())
	assert.Equal(t, "2024-12-31", end.String())
}

func TestDateRangeMixesYearAndBounds(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	r := httptest.NewRequest(http.MethodGet, "/api/?year=2022&startDate=2022-06-01", nil)
	start, end, err := dateRange(r, now)
	require.NoError(t, err)
	assert.Equal(t, "2022-06-01", start.String())
	assert.Equal(t, "2022-12-31", end.String())

	for _, q := range []string{"year=abc", "startDate=06/01/2022", "startDate=2024-02-01&endDate=2024-01-01"} {
		_, _, err := dateRange(httptest.NewRequest(http.MethodGet, "/api/?"+q, nil), now)
		assert.Error(t, err, q)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"json":"{\"title\":\"Heat\"}","apiKey":"k"}`))
	payload, key, err := decodeEnvelope(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Heat"}`, string(payload))
	assert.Equal(t, "k", key)

	// The body stays readable for the next reader.
	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Contains(t, string(rest), "apiKey")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Heat"}`))
	payload, key, err = decodeEnvelope(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Heat"}`, string(payload))
	assert.Empty(t, key)

	form := url.Values{"json": {`{"title":"Heat"}`}}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	payload, _, err = decodeEnvelope(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Heat"}`, string(payload))

	_, _, err = decodeEnvelope(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  ")))
	assert.ErrorIs(t, err, errEmptyPayload)

	_, _, err = decodeEnvelope(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope")))
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set(headerProxyUser, "alice")
	who, ok := authenticate(r, "")
	assert.True(t, ok)
	assert.Equal(t, "alice", who)

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set(headerAPIKey, "k")
	_, ok = authenticate(r, "")
	assert.False(t, ok, "no configured key means only the proxy header works")

	_, ok = authenticate(r, "k")
	assert.True(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/?apiKey=bad", nil)
	_, ok = authenticate(r, "k")
	assert.False(t, ok)
}

func TestParseEntryDate(t *testing.T) {
	d, err := parseEntryDate("1/5/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", d.String())

	d, err = parseEntryDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", d.String())

	_, err = parseEntryDate("13/40/2024")
	assert.Error(t, err)
}

func TestReshapeDetailsWithoutIMDb(t *testing.T) {
	out := reshapeDetails(tmdbMovie(42))
	assert.Equal(t, "https://www.themoviedb.org/movie/42", out.MovieURL)
	assert.Equal(t, "themoviedb.org/movie/42", out.reference())
	assert.Equal(t, "N/A", out.Runtime)
	assert.Equal(t, "N/A", out.Poster)
}

func tmdbMovie(id int64) tmdb.Movie { return tmdb.Movie{ID: id, Title: "Untitled"} }
