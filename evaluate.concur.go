package mlhb

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run processes the configured years with a bounded worker pool. Years are
// independent: each owns its reader, writers, and working arrays, so the only
// shared state is the read-only grid and configuration. A failed year cancels
// the rest of the pool; completed years keep their outputs.
func (ev *Evaluator) Run(ctx context.Context) error {
	log.WithFields(log.Fields{"years": len(ev.Cfg.Years), "workers": ev.Cfg.Workers}).Info("run start")

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, ev.Cfg.Workers)
	for _, year := range ev.Cfg.Years {
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()
			return ev.EvaluateYear(ctx, year)
		})
	}
	return eg.Wait()
}
