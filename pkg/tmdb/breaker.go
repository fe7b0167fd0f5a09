package tmdb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Breaker guards a Provider with a circuit breaker. Calls are never retried;
// an open breaker fails immediately with gobreaker.ErrOpenState.
type Breaker struct {
	next    Provider
	search  *gobreaker.CircuitBreaker[SearchPage]
	details *gobreaker.CircuitBreaker[Movie]
}

var _ Provider = (*Breaker)(nil)

type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

func NewBreaker(next Provider, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	settings := func(name string, notFoundOK bool) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			IsSuccessful: func(err error) bool {
				// Unknown movie ids and callers going away say nothing about TMDB health.
				// A 404 from search means a broken base URL, so it counts there.
				return err == nil || errors.Is(err, context.Canceled) || (notFoundOK && errors.Is(err, ErrNotFound))
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("tmdb breaker state change")
			},
		}
	}
	return &Breaker{
		next:    next,
		search:  gobreaker.NewCircuitBreaker[SearchPage](settings("tmdb-search", false)),
		details: gobreaker.NewCircuitBreaker[Movie](settings("tmdb-details", true)),
	}
}

func (b *Breaker) SearchMovies(ctx context.Context, query string, page int) (SearchPage, error) {
	return b.search.Execute(func() (SearchPage, error) {
		return b.next.SearchMovies(ctx, query, page)
	})
}

func (b *Breaker) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	return b.details.Execute(func() (Movie, error) {
		return b.next.MovieDetails(ctx, id)
	})
}

// State reports the search breaker state for health output.
func (b *Breaker) State() gobreaker.State { return b.search.State() }
