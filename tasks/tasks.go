/*
Package tasks drives the deposit lifecycle: per tick it walks every
registered chain handler, initializes QUEUED deposits, finalizes
INITIALIZED ones and runs wormhole bridging. Ticks never overlap; a slow
tick delays the next.
*/
package tasks

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/deposit"
)

type Runner struct {
	registry *chain.Registry
	store    deposit.Store

	tickerInterval    time.Duration
	pastTimeInMinutes int
}

func NewRunner(cfg *Config) *Runner {
	if cfg.Registry == nil || cfg.Store == nil {
		return nil
	}

	interval := cfg.TickerInterval
	if interval <= MinTickerInterval {
		interval = MinTickerInterval
	}

	return &Runner{
		registry:          cfg.Registry,
		store:             cfg.Store,
		tickerInterval:    interval,
		pastTimeInMinutes: cfg.PastTimeInMinutes,
	}
}

// Run blocks until ctx is cancelled. The catch-up pass executes once before
// the first tick.
func (r *Runner) Run(ctx context.Context) error {
	logger.Info("starting deposit lifecycle loop")
	r.CheckPastDeposits(ctx)

	ticker := time.NewTicker(r.tickerInterval)
	defer func() {
		logger.Info("stopping deposit lifecycle loop")
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one lifecycle pass over every registered handler.
func (r *Runner) Tick(ctx context.Context) {
	for _, handler := range r.registry.List() {
		r.initializeQueued(ctx, handler)
		r.finalizeInitialized(ctx, handler)
		handler.ProcessWormholeBridging(ctx)
	}
}

// CheckPastDeposits runs the startup catch-up query on every handler that
// supports it.
func (r *Runner) CheckPastDeposits(ctx context.Context) {
	if r.pastTimeInMinutes == 0 {
		return
	}

	for _, handler := range r.registry.List() {
		if !handler.SupportsPastDepositCheck() {
			continue
		}
		handler.CheckForPastDeposits(ctx, chain.PastDepositsOptions{
			PastTimeInMinutes: r.pastTimeInMinutes,
			LatestBlock:       handler.GetLatestBlock(ctx),
		})
	}
}

func (r *Runner) initializeQueued(ctx context.Context, handler chain.Handler) {
	queued, err := r.store.GetByStatus(ctx, deposit.StatusQueued, handler.ChainId())
	if err != nil {
		logger.WithError(err).WithField("chain", handler.ChainName()).Error("failed to list queued deposits")
		return
	}
	for _, d := range queued {
		handler.InitializeDeposit(ctx, d)
	}
}

func (r *Runner) finalizeInitialized(ctx context.Context, handler chain.Handler) {
	initialized, err := r.store.GetByStatus(ctx, deposit.StatusInitialized, handler.ChainId())
	if err != nil {
		logger.WithError(err).WithField("chain", handler.ChainName()).Error("failed to list initialized deposits")
		return
	}
	for _, d := range initialized {
		handler.FinalizeDeposit(ctx, d)
	}
}
