package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"movielog-server/internal/metrics"
	"movielog-server/pkg/tmdb"
)

// MaxPages caps how many provider pages one search may fetch.
const MaxPages = 10

var ErrTitleRequired = errors.New("title is required")

// Item is a search result reshaped for the client picklist.
type Item struct {
	Title       string   `json:"Title"`
	Year        string   `json:"Year"`
	TmdbID      int64    `json:"tmdbID"`
	Type        string   `json:"Type"`
	Poster      string   `json:"Poster"`
	Popularity  *float64 `json:"popularity,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
	VoteCount   *int64   `json:"vote_count,omitempty"`
	ReleaseDate *string  `json:"release_date,omitempty"`
	Video       *bool    `json:"video,omitempty"`
	Overview    string   `json:"overview,omitempty"`
}

type Result struct {
	Items      []Item
	TotalCount int
	Pages      int
}

type Aggregator struct {
	provider tmdb.Provider
	maxPages int
}

// NewAggregator returns an aggregator fetching at most maxPages pages,
// never more than MaxPages.
func NewAggregator(p tmdb.Provider, maxPages int) *Aggregator {
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	return &Aggregator{provider: p, maxPages: maxPages}
}

// Search pages through provider results for title in order, filtering each
// page with c before accumulating. Any provider error aborts the search and
// no partial results are returned.
func (a *Aggregator) Search(ctx context.Context, title string, c Criteria) (Result, error) {
	if title == "" {
		return Result{}, ErrTitleRequired
	}
	first, err := a.fetch(ctx, title, 1)
	if err != nil {
		return Result{}, err
	}
	if len(first.Results) == 0 {
		metrics.RecordSearch(1, 0, 0)
		return Result{Items: []Item{}, Pages: 1}, nil
	}

	last := min(first.TotalPages, a.maxPages)
	items := make([]Item, 0, len(first.Results))
	fetched := 0
	keep := func(page tmdb.SearchPage) {
		fetched += len(page.Results)
		for _, it := range page.Results {
			if Include(it, c) {
				items = append(items, Reshape(it))
			}
		}
	}
	keep(first)
	pages := 1
	for p := 2; p <= last; p++ {
		page, err := a.fetch(ctx, title, p)
		if err != nil {
			return Result{}, err
		}
		pages++
		keep(page)
		if len(page.Results) == 0 {
			break
		}
	}

	metrics.RecordSearch(pages, fetched, len(items))
	log.Debug().Str("title", title).Int("pages", pages).Int("fetched", fetched).Int("kept", len(items)).Msg("search complete")
	return Result{Items: items, TotalCount: len(items), Pages: pages}, nil
}

func (a *Aggregator) fetch(ctx context.Context, title string, page int) (tmdb.SearchPage, error) {
	start := time.Now()
	res, err := a.provider.SearchMovies(ctx, title, page)
	metrics.RecordProviderCall("search", time.Since(start), err)
	if err != nil {
		return tmdb.SearchPage{}, fmt.Errorf("search page %d: %w", page, err)
	}
	return res, nil
}

// Reshape maps a provider item to the client schema.
func Reshape(it tmdb.SearchItem) Item {
	out := Item{
		Title:       it.Title,
		TmdbID:      it.ID,
		Type:        "movie",
		Poster:      tmdb.PosterURL(it.PosterPath),
		Popularity:  it.Popularity,
		VoteAverage: it.VoteAverage,
		VoteCount:   it.VoteCount,
		ReleaseDate: it.ReleaseDate,
		Video:       it.Video,
		Overview:    it.Overview,
	}
	if it.ReleaseDate != nil && len(*it.ReleaseDate) >= 4 {
		out.Year = (*it.ReleaseDate)[:4]
	}
	if it.Video != nil && *it.Video {
		out.Type = "video"
	}
	return out
}
