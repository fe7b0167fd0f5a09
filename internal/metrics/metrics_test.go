package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/", "200")
	before := testutil.ToFloat64(c)
	RecordAPIRequest(http.MethodGet, "GET /api/", 200, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordDBQueryCountsErrors(t *testing.T) {
	c := DBQueryErrors.WithLabelValues("insert")
	before := testutil.ToFloat64(c)
	RecordDBQuery("insert", time.Now(), nil)
	assert.Equal(t, before, testutil.ToFloat64(c))
	RecordDBQuery("insert", time.Now(), errors.New("connection refused"))
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordSearch(t *testing.T) {
	fetched := SearchItems.WithLabelValues("fetched")
	kept := SearchItems.WithLabelValues("kept")
	f0, k0 := testutil.ToFloat64(fetched), testutil.ToFloat64(kept)
	RecordSearch(3, 40, 7)
	assert.Equal(t, f0+40, testutil.ToFloat64(fetched))
	assert.Equal(t, k0+7, testutil.ToFloat64(kept))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordProviderCall(t *testing.T) {
	c := ProviderRequests.WithLabelValues("search", "error")
	before := testutil.ToFloat64(c)
	RecordProviderCall("search", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
