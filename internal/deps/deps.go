package deps

import (
	"context"
	"time"

	"movielog-server/internal/charts"
	"movielog-server/internal/export"
	"movielog-server/internal/model"
	"movielog-server/internal/search"
	"movielog-server/pkg/cache"
	"movielog-server/pkg/tmdb"
)

// ViewingStore is the persistence the handlers need. *repos.Repository
// satisfies it.
type ViewingStore interface {
	ListBetween(ctx context.Context, start, end model.Date) ([]model.Viewing, error)
	FindByReference(ctx context.Context, ref string) ([]model.PriorViewing, error)
	Get(ctx context.Context, id int64) (model.Viewing, error)
	Insert(ctx context.Context, v model.Viewing) (int64, error)
	Update(ctx context.Context, id int64, v model.Viewing) error
	Ping(ctx context.Context) error
}

// Searcher runs a filtered multi-page provider search.
type Searcher interface {
	Search(ctx context.Context, title string, c search.Criteria) (search.Result, error)
}

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Store    ViewingStore
	Search   Searcher
	Provider tmdb.Provider
	Cache    cache.Cache
	CacheTTL time.Duration

	// APIKey is the shared secret for write endpoints; empty disables key auth.
	APIKey string
	Feed   export.FeedInfo
	Charts charts.Options

	Name      string
	Env       string
	StartedAt time.Time
	Now       func() time.Time
}

// Clock returns the current time, honoring an injected Now.
func (d ServerDeps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
