package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"movielog-server/pkg/tmdb"
)

// ErrInvalidCriteria wraps malformed search filter values.
var ErrInvalidCriteria = errors.New("invalid search criteria")

// Criteria holds optional bounds on provider search results. A nil bound
// (or empty date) imposes no constraint.
type Criteria struct {
	MinPopularity  *float64
	MaxPopularity  *float64
	MinVoteCount   *float64
	MaxVoteCount   *float64
	MinVoteAverage *float64
	MaxVoteAverage *float64
	MinReleaseDate string
	MaxReleaseDate string
	ExcludeVideos  bool
}

// Include reports whether item satisfies every bound present in c. An item
// missing a bounded field is rejected.
func Include(item tmdb.SearchItem, c Criteria) bool {
	if !inRange(item.Popularity, c.MinPopularity, c.MaxPopularity) {
		return false
	}
	var votes *float64
	if item.VoteCount != nil {
		v := float64(*item.VoteCount)
		votes = &v
	}
	if !inRange(votes, c.MinVoteCount, c.MaxVoteCount) {
		return false
	}
	if !inRange(item.VoteAverage, c.MinVoteAverage, c.MaxVoteAverage) {
		return false
	}
	if c.MinReleaseDate != "" || c.MaxReleaseDate != "" {
		rd, ok := releaseDate(item)
		if !ok {
			return false
		}
		// Full zero padded ISO dates order correctly as strings.
		if c.MinReleaseDate != "" && rd < c.MinReleaseDate {
			return false
		}
		if c.MaxReleaseDate != "" && rd > c.MaxReleaseDate {
			return false
		}
	}
	if c.ExcludeVideos && (item.Video == nil || *item.Video) {
		return false
	}
	return true
}

func inRange(v, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	if hi != nil && *v > *hi {
		return false
	}
	return true
}

// releaseDate returns the item's release date only when it is a full
// YYYY-MM-DD date; partial or malformed values count as absent.
func releaseDate(item tmdb.SearchItem) (string, bool) {
	if item.ReleaseDate == nil {
		return "", false
	}
	s := *item.ReleaseDate
	if !isISODate(s) {
		return "", false
	}
	return s, true
}

func isISODate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Query is a decoded searchMovie request.
type Query struct {
	Title string
	Criteria
}

// ParseQuery decodes the client's search payload. Numeric bounds may be
// JSON numbers or numeric strings; empty strings and nulls mean "no bound".
func ParseQuery(data []byte) (Query, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	var q Query
	var err error
	if q.Title, err = optString(raw, "title"); err != nil {
		return Query{}, err
	}
	q.Title = strings.TrimSpace(q.Title)

	floats := []struct {
		key string
		dst **float64
	}{
		{"min_popularity", &q.MinPopularity},
		{"max_popularity", &q.MaxPopularity},
		{"min_vote_count", &q.MinVoteCount},
		{"max_vote_count", &q.MaxVoteCount},
		{"min_vote_average", &q.MinVoteAverage},
		{"max_vote_average", &q.MaxVoteAverage},
	}
	for _, f := range floats {
		if *f.dst, err = optFloat(raw, f.key); err != nil {
			return Query{}, err
		}
	}
	for key, dst := range map[string]*string{"min_release_date": &q.MinReleaseDate, "max_release_date": &q.MaxReleaseDate} {
		if *dst, err = optString(raw, key); err != nil {
			return Query{}, err
		}
		*dst = strings.TrimSpace(*dst)
		if *dst != "" && !isISODate(*dst) {
			return Query{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidCriteria, key)
		}
	}
	if q.ExcludeVideos, err = optBool(raw, "exclude_videos"); err != nil {
		return Query{}, err
	}
	return q, nil
}

func isNull(b json.RawMessage) bool {
	return len(b) == 0 || string(b) == "null"
}

func optString(raw map[string]json.RawMessage, key string) (string, error) {
	b, ok := raw[key]
	if !ok || isNull(b) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidCriteria, key)
	}
	return s, nil
}

func optFloat(raw map[string]json.RawMessage, key string) (*float64, error) {
	b, ok := raw[key]
	if !ok || isNull(b) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidCriteria, key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidCriteria, key)
	}
	return &f, nil
}

func optBool(raw map[string]json.RawMessage, key string) (bool, error) {
	b, ok := raw[key]
	if !ok || isNull(b) {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		return v, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidCriteria, key)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		return true, nil
	case "", "false", "off", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidCriteria, key)
}
