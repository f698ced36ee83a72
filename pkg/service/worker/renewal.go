package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// RenewalWorker periodically renews channels that are about to expire.
// It is used when no task queue scheduler runs the sweep.
//
// Only one instance per deployment should run it.
type RenewalWorker struct {
	handler  interfaces.TaskHandler
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRenewalWorker creates a worker running the sweep every interval
func NewRenewalWorker(handler interfaces.TaskHandler, interval time.Duration) *RenewalWorker {
	return &RenewalWorker{
		handler:  handler,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a first sweep and then one per interval, in the background
func (w *RenewalWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("channel renewal worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the running sweep
func (w *RenewalWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("channel renewal worker stopped")
}

func (w *RenewalWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.renew(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.renew(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("channel renewal worker context cancelled")
			return
		}
	}
}

func (w *RenewalWorker) renew(ctx context.Context) {
	start := time.Now()
	if err := w.handler.RenewChannels(ctx); err != nil {
		errutil.Handle(ctx, err, "channel renewal failed, will retry next interval")
		return
	}
	logging.From(ctx).Debug("channel renewal sweep done", "duration", time.Since(start).String())
}
