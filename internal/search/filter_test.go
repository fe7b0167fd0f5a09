package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movielog-server/pkg/tmdb"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func str(v string) *string   { return &v }
func boolp(v bool) *bool     { return &v }

func TestIncludeNoCriteria(t *testing.T) {
	assert.True(t, Include(tmdb.SearchItem{Title: "bare"}, Criteria{}))
}

func TestIncludeMinPopularityProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		p := rng.Float64() * 100
		c := Criteria{MinPopularity: f64(p)}
		items := make([]tmdb.SearchItem, 50)
		for j := range items {
			if rng.Intn(10) == 0 {
				continue // popularity absent
			}
			items[j].Popularity = f64(rng.Float64() * 100)
		}
		for _, it := range items {
			got := Include(it, c)
			want := it.Popularity != nil && *it.Popularity >= p
			require.Equal(t, want, got)
		}
	}
}

func TestIncludeBounds(t *testing.T) {
	item := tmdb.SearchItem{
		Popularity:  f64(10),
		VoteAverage: f64(7.5),
		VoteCount:   i64(300),
		ReleaseDate: str("1999-03-31"),
		Video:       boolp(false),
	}
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"max popularity equal", Criteria{MaxPopularity: f64(10)}, true},
		{"max popularity below", Criteria{MaxPopularity: f64(9.9)}, false},
		{"vote count window", Criteria{MinVoteCount: f64(100), MaxVoteCount: f64(500)}, true},
		{"vote count too low", Criteria{MinVoteCount: f64(301)}, false},
		{"vote average", Criteria{MinVoteAverage: f64(7), MaxVoteAverage: f64(8)}, true},
		{"vote average above", Criteria{MaxVoteAverage: f64(7)}, false},
		{"release after min", Criteria{MinReleaseDate: "1999-01-01"}, true},
		{"release inclusive max", Criteria{MaxReleaseDate: "1999-03-31"}, true},
		{"release before min", Criteria{MinReleaseDate: "1999-04-01"}, false},
		{"exclude videos keeps movie", Criteria{ExcludeVideos: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Include(item, tt.c))
		})
	}
}

func TestIncludeAbsentFieldRejected(t *testing.T) {
	bare := tmdb.SearchItem{Title: "x"}
	assert.False(t, Include(bare, Criteria{MinVoteCount: f64(0)}))
	assert.False(t, Include(bare, Criteria{MaxVoteAverage: f64(10)}))
	assert.False(t, Include(bare, Criteria{MinReleaseDate: "1900-01-01"}))
	assert.False(t, Include(bare, Criteria{ExcludeVideos: true}))
}

func TestIncludePartialReleaseDateTreatedAsAbsent(t *testing.T) {
	for _, rd := range []string{"", "1999", "1999-3-1", "1999-02-30"} {
		item := tmdb.SearchItem{ReleaseDate: str(rd)}
		assert.False(t, Include(item, Criteria{MinReleaseDate: "1900-01-01"}), rd)
		assert.True(t, Include(item, Criteria{}), rd)
	}
}

func TestIncludeExcludeVideos(t *testing.T) {
	c := Criteria{ExcludeVideos: true}
	assert.True(t, Include(tmdb.SearchItem{Video: boolp(false)}, c))
	assert.False(t, Include(tmdb.SearchItem{Video: boolp(true)}, c))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery([]byte(`{"title":" Heat ","min_popularity":"5.5","max_vote_count":100,
		"min_release_date":"1990-01-01","max_release_date":"","exclude_videos":"on","min_vote_average":null}`))
	require.NoError(t, err)
	assert.Equal(t, "Heat", q.Title)
	require.NotNil(t, q.MinPopularity)
	assert.Equal(t, 5.5, *q.MinPopularity)
	require.NotNil(t, q.MaxVoteCount)
	assert.Equal(t, 100.0, *q.MaxVoteCount)
	assert.Nil(t, q.MinVoteAverage)
	assert.Equal(t, "1990-01-01", q.MinReleaseDate)
	assert.Empty(t, q.MaxReleaseDate)
	assert.True(t, q.ExcludeVideos)
}

func TestParseQueryRejectsMalformed(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"title":"x","min_popularity":"lots"}`,
		`{"title":"x","min_release_date":"1990"}`,
		`{"title":"x","exclude_videos":"maybe"}`,
		`{"title":5}`,
	} {
		_, err := ParseQuery([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidCriteria, body)
	}
}
