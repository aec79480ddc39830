package verdict

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"seal/internal/model"
	"seal/internal/scan"
	"seal/internal/visibility"
)

// DefaultCacheSize bounds how many snapshot verdicts stay resident.
const DefaultCacheSize = 4

// Computer produces verdicts at most once per program snapshot. The first
// caller for a snapshot runs the full scan; concurrent callers for the same
// snapshot block on that computation and share its result. Failed or
// cancelled computations leave the cache empty, so a later call starts
// clean.
type Computer struct {
	workers int
	logger  *slog.Logger
	group   singleflight.Group
	cache   *lru.Cache[string, *Verdicts]
}

// NewComputer builds a Computer. workers bounds document-scan parallelism
// (<= 0 means one per CPU); cacheSize <= 0 falls back to DefaultCacheSize.
func NewComputer(workers, cacheSize int, logger *slog.Logger) (*Computer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Verdicts](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Computer{
		workers: workers,
		logger:  logger,
		cache:   cache,
	}, nil
}

// Verdicts returns the promotion verdicts for prog, computing them on the
// first request for its snapshot and serving the cached result afterwards.
func (c *Computer) Verdicts(ctx context.Context, prog *model.Program) (*Verdicts, error) {
	key := prog.SnapshotID
	if key == "" {
		// No snapshot identity to key on; compute without caching.
		return c.compute(ctx, prog)
	}

	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	// Concurrent callers for one snapshot collapse onto a single in-flight
	// computation. The computation runs under the first caller's context;
	// its cancellation propagates to every waiter, and nothing is cached.
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		v, err := c.compute(ctx, prog)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*Verdicts), nil
}

func (c *Computer) compute(ctx context.Context, prog *model.Program) (*Verdicts, error) {
	start := time.Now()
	res := visibility.NewResolver(prog)

	cands, err := scan.Candidates(ctx, prog, res, c.logger)
	if err != nil {
		return nil, err
	}
	writes, err := scan.Writes(ctx, prog, c.workers, c.logger)
	if err != nil {
		return nil, err
	}

	v := &Verdicts{
		SnapshotID: prog.SnapshotID,
		Candidates: cands.Values(),
		Written:    writes.Values(),
		Promotable: cands.Diff(writes),
	}
	c.logger.Info("verdicts computed",
		"snapshot", shortID(prog.SnapshotID),
		"documents", prog.DocumentCount(),
		"fields", len(prog.Fields),
		"candidates", len(v.Candidates),
		"written", len(v.Written),
		"promotable", len(v.Promotable),
		"duration", time.Since(start),
	)
	return v, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
