package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/service/taskqueue"
	"github.com/secmon-lab/ticketcal/pkg/utils/async"
	"github.com/secmon-lab/ticketcal/pkg/utils/backoff"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
)

// InlineDispatcher runs dispatched work in goroutines of the current process.
// It serves single-instance deployments without a queue; retries are bounded
// by its backoff policy and do not survive a restart.
type InlineDispatcher struct {
	mu      sync.RWMutex
	handler interfaces.TaskHandler
	policy  backoff.Policy
	group   async.Group
}

var _ interfaces.Dispatcher = &InlineDispatcher{}

// InlineOption configures an InlineDispatcher
type InlineOption func(*InlineDispatcher)

// WithRetryPolicy sets how often a unit of work is retried on backend outage
func WithRetryPolicy(p backoff.Policy) InlineOption {
	return func(d *InlineDispatcher) {
		d.policy = p
	}
}

// NewInlineDispatcher creates a dispatcher. SetHandler must be called before dispatching.
func NewInlineDispatcher(opts ...InlineOption) *InlineDispatcher {
	d := &InlineDispatcher{
		policy: backoff.Policy{MaxRetries: 5, Base: time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetHandler binds the handler executing dispatched work
func (d *InlineDispatcher) SetHandler(h interfaces.TaskHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = h
}

// Wait blocks until all dispatched work has finished
func (d *InlineDispatcher) Wait() {
	d.group.Wait()
}

func isBackendOutage(err error) bool {
	return errors.Is(err, model.ErrBackendUnavailable)
}

func (d *InlineDispatcher) dispatch(ctx context.Context, taskType string, fn func(ctx context.Context, h interfaces.TaskHandler) error) error {
	d.mu.RLock()
	h := d.handler
	d.mu.RUnlock()
	if h == nil {
		return goerr.New("inline dispatcher has no handler", goerr.V("type", taskType))
	}

	d.group.Go(ctx, func(ctx context.Context) error {
		start := time.Now()
		err := backoff.Do(ctx, d.policy, isBackendOutage, func(ctx context.Context) error {
			return fn(ctx, h)
		})
		err = taskqueue.Classify(ctx, taskType, err)

		outcome := metrics.OutcomeDone
		if err != nil {
			outcome = metrics.OutcomeFailed
		}
		metrics.ObserveTask(taskType, outcome, start)
		return err
	})
	return nil
}

func (d *InlineDispatcher) FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	return d.dispatch(ctx, taskqueue.TypeFetchTicket, func(ctx context.Context, h interfaces.TaskHandler) error {
		return h.FetchTicket(ctx, ticketID, overwrite)
	})
}

func (d *InlineDispatcher) SetupChannel(ctx context.Context, profileID model.ProfileID) error {
	return d.dispatch(ctx, taskqueue.TypeSetupChannel, func(ctx context.Context, h interfaces.TaskHandler) error {
		return h.SetupChannel(ctx, profileID)
	})
}

func (d *InlineDispatcher) SaveChannel(ctx context.Context, channel *model.Channel) error {
	ch := *channel
	return d.dispatch(ctx, taskqueue.TypeSaveChannel, func(ctx context.Context, h interfaces.TaskHandler) error {
		return h.SaveChannel(ctx, &ch)
	})
}

func (d *InlineDispatcher) MakeSync(ctx context.Context, profileID model.ProfileID) error {
	return d.dispatch(ctx, taskqueue.TypeMakeSync, func(ctx context.Context, h interfaces.TaskHandler) error {
		return h.MakeSync(ctx, profileID)
	})
}

func (d *InlineDispatcher) SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error {
	return d.dispatch(ctx, taskqueue.TypeSyncPage, func(ctx context.Context, h interfaces.TaskHandler) error {
		return h.SyncPage(ctx, profileID, events)
	})
}
