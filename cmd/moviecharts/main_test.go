package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewingsJSON = `[
 {"id":1,"movieTitle":"Heat","viewingDate":"2024-01-15","viewFormat":"Blu-ray","viewLocation":"Home","movieGenre":"Crime","firstViewing":true},
 {"id":2,"movieTitle":"Alien","viewingDate":"2024-02-03","viewFormat":"Digital","viewLocation":"Home","movieGenre":"Horror","firstViewing":false}
]`

func TestRunPrintsDashboard(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(viewingsJSON))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := run(context.Background(), &out, options{server: srv.URL, year: 2024, threshold: 0})
	require.NoError(t, err)
	assert.Equal(t, "endDate=2024-12-31&startDate=2024-01-01", gotQuery)
	assert.Contains(t, out.String(), "Viewings 2024-01-01 to 2024-12-31")
	assert.Regexp(t, `Total\s+2\n`, out.String())
	assert.Contains(t, out.String(), "Theatre")
}

func TestRunJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(viewingsJSON))
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, options{server: srv.URL, year: 2024, asJSON: true}))
	assert.Contains(t, out.String(), `"total": 2`)
}

func TestRunRejectsBadRange(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, options{server: "http://unused", year: 2024, start: "2024-05-01", end: "2024-01-01"})
	assert.Error(t, err)

	err = run(context.Background(), &bytes.Buffer{}, options{server: "http://unused", year: 2024, threshold: -1})
	assert.Error(t, err)
}

func TestRunServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	err := run(context.Background(), &bytes.Buffer{}, options{server: srv.URL, year: 2024})
	assert.Error(t, err)
}
