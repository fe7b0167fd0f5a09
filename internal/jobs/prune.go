package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
)

// Pruner is anything holding entries that expire on their own schedule.
type Pruner interface {
	Prune() int
}

// CachePruner periodically removes expired entries so an idle in-memory
// cache does not keep stale renderings around.
type CachePruner struct {
	target   Pruner
	interval time.Duration
}

var _ suture.Service = (*CachePruner)(nil)

func NewCachePruner(target Pruner, interval time.Duration) *CachePruner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CachePruner{target: target, interval: interval}
}

func (p *CachePruner) Serve(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.runOnce()
		}
	}
}

func (p *CachePruner) runOnce() int {
	n := p.target.Prune()
	if n > 0 {
		log.Debug().Int("removed", n).Msg("cache prune completed")
	}
	return n
}

func (p *CachePruner) String() string { return "cache-pruner" }
