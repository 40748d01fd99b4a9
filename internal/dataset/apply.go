// Package dataset applies an augmentation adapter over many samples at once.
//
// Adapters own their random state and are not safe for concurrent use, so
// every worker builds its own from a shared factory. The operation list the
// factory closes over is immutable and may be shared.
//
// Apply is the library entry point for data loaders that push many samples
// through one pipeline. The MCP server augments one sample per tool call and
// builds its adapter directly.
package dataset

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/annotated-augment/internal/adapter"
	"github.com/ironsheep/annotated-augment/internal/annotation"
)

// AdapterFactory builds one adapter for a worker from that worker's seed.
type AdapterFactory func(seed uint64) *adapter.Adapter

// Apply transforms samples with workers goroutines. Worker w uses an adapter
// seeded with seed+w and handles samples w, w+workers, w+2*workers, ..., so a
// run is reproducible for a fixed seed and worker count.
//
// Results keep input order. The first error cancels the remaining work and is
// returned with the index of the failing sample.
func Apply(ctx context.Context, samples []*annotation.Sample, newAdapter AdapterFactory, workers int, seed uint64) ([]*annotation.Sample, error) {
	if newAdapter == nil {
		return nil, fmt.Errorf("nil adapter factory")
	}
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, max(len(samples), 1))

	out := make([]*annotation.Sample, len(samples))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			a := newAdapter(seed + uint64(w))
			for i := w; i < len(samples); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := a.Apply(samples[i])
				if err != nil {
					return fmt.Errorf("sample %d: %w", i, err)
				}
				out[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"samples": len(samples), "workers": workers}).Debug("dataset augmented")
	return out, nil
}
