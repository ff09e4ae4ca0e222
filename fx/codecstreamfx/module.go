// Package codecstreamfx provides an fx module for a disk-backed stream factory.
package codecstreamfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/stats"
	"github.com/discochess/codecstream/internal/stats/logger"
	"github.com/discochess/codecstream/internal/store"
	"github.com/discochess/codecstream/internal/store/cachedstore"
	"github.com/discochess/codecstream/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/codecstream/internal/store/cachedstore/memory"
	"github.com/discochess/codecstream/internal/store/diskstore"
)

// Config holds configuration for the disk-backed factory.
type Config struct {
	// Root is the directory objects are opened from.
	Root string

	// BufferSize is the default read size of opened streams.
	// Default is codecstream.DefaultBufferSize.
	BufferSize int

	// CacheSize is the number of whole objects to cache in memory.
	// Zero disables the cache.
	CacheSize int

	// CacheBytes bounds the total size of cached objects.
	// Zero means no byte limit.
	CacheBytes int64
}

// Module provides a *codecstream.Factory over a directory.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("codecstream",
	fx.Provide(
		newStatsCollector,
		newFactory,
	),
)

// newStatsCollector keeps metric totals and logs them when the app stops.
func newStatsCollector(log *zap.Logger, lc fx.Lifecycle) stats.Collector {
	c := logger.New(log.Named("codecstream.stats"))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Flush()
			return nil
		},
	})
	return c
}

// Params holds dependencies for creating the factory.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided factory.
type Result struct {
	fx.Out

	Factory *codecstream.Factory
}

func newFactory(p Params) (Result, error) {
	disk, err := diskstore.New(p.Config.Root)
	if err != nil {
		return Result{}, err
	}

	var st store.Store = disk
	if p.Config.CacheSize > 0 {
		lruStrategy, err := lru.NewWithMaxBytes(p.Config.CacheSize, p.Config.CacheBytes)
		if err != nil {
			return Result{}, err
		}
		st = cachedstore.New(st, memory.New(lruStrategy, p.Collector))
	}

	factory, err := codecstream.NewFactory(st,
		codecstream.WithBufferSize(p.Config.BufferSize),
		codecstream.WithStats(p.Collector),
		codecstream.WithLogger(p.Logger.Named("codecstream")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return factory.Close()
		},
	})

	return Result{Factory: factory}, nil
}
