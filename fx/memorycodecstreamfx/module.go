// Package memorycodecstreamfx provides an fx module for an in-memory stream factory.
// Useful for testing.
package memorycodecstreamfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/stats"
	"github.com/discochess/codecstream/internal/stats/logger"
	"github.com/discochess/codecstream/internal/store/memstore"
)

// Module provides an in-memory *codecstream.Factory for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorycodecstream",
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

	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided factory and store.
type Result struct {
	fx.Out

	Factory *codecstream.Factory
	Store   *memstore.Store // Exposed for test setup
}

func newFactory(p Params) (Result, error) {
	mem := memstore.New()
	factory, err := codecstream.NewFactory(mem,
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

	return Result{
		Factory: factory,
		Store:   mem,
	}, nil
}
