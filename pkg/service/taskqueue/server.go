package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
)

// DefaultRenewSpec runs the channel renewal sweep once a minute
const DefaultRenewSpec = "@every 1m"

// Alerter receives tasks that failed for good
type Alerter interface {
	Alert(ctx context.Context, title string, err error) error
}

// Server consumes queued tasks and runs the periodic renewal sweep
type Server struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux

	concurrency int
	renewSpec   string
	alerter     Alerter
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithConcurrency sets the number of concurrent task workers
func WithConcurrency(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRenewSpec sets the cron spec of the renewal sweep. An empty spec disables it.
func WithRenewSpec(spec string) ServerOption {
	return func(s *Server) {
		s.renewSpec = spec
	}
}

// WithAlerter sends permanently failed tasks to an alert sink
func WithAlerter(a Alerter) ServerOption {
	return func(s *Server) {
		s.alerter = a
	}
}

// NewServer builds a task server bound to the queue given as a redis:// URL
func NewServer(redisURL string, handler interfaces.TaskHandler, opts ...ServerOption) (*Server, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL for task queue")
	}

	s := &Server{
		mux:         NewServeMux(handler),
		concurrency: 10,
		renewSpec:   DefaultRenewSpec,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:  s.concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(s.handleError),
		Logger:       &queueLogger{},
		LogLevel:     asynq.WarnLevel,
	})

	if s.renewSpec != "" {
		s.scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   &queueLogger{},
			LogLevel: asynq.WarnLevel,
		})
		if _, err := s.scheduler.Register(s.renewSpec, NewRenewChannelsTask()); err != nil {
			return nil, goerr.Wrap(err, "failed to register renewal sweep", goerr.V("spec", s.renewSpec))
		}
	}

	return s, nil
}

// Start begins processing tasks in the background
func (s *Server) Start(ctx context.Context) error {
	if err := s.srv.Start(s.mux); err != nil {
		return goerr.Wrap(err, "failed to start task server")
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			s.srv.Shutdown()
			return goerr.Wrap(err, "failed to start task scheduler")
		}
	}
	logging.From(ctx).Info("task server started", "concurrency", s.concurrency, "renew_spec", s.renewSpec)
	return nil
}

// Shutdown waits for in-flight tasks and stops the server
func (s *Server) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.srv.Shutdown()
}

func (s *Server) handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	if !errors.Is(err, asynq.SkipRetry) && retried < maxRetry {
		logging.From(ctx).Warn("task failed, will retry",
			"type", task.Type(),
			"retried", retried,
			"max_retry", maxRetry,
			"error", err.Error(),
		)
		return
	}

	errutil.Handle(ctx, err, "task failed permanently")
	if s.alerter != nil {
		title := fmt.Sprintf("task %s failed permanently", task.Type())
		if alertErr := s.alerter.Alert(ctx, title, err); alertErr != nil {
			errutil.Handle(ctx, alertErr, "failed to send alert")
		}
	}
}

// NewServeMux routes queued tasks to the handler
func NewServeMux(handler interfaces.TaskHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeFetchTicket, func(ctx context.Context, task *asynq.Task) error {
		p, err := decode[fetchTicketPayload](task)
		if err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
		return handler.FetchTicket(ctx, model.TicketID(p.TicketID), p.Overwrite)
	})

	mux.HandleFunc(TypeSetupChannel, func(ctx context.Context, task *asynq.Task) error {
		p, err := decode[profilePayload](task)
		if err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
		return handler.SetupChannel(ctx, model.ProfileID(p.ProfileID))
	})

	mux.HandleFunc(TypeSaveChannel, func(ctx context.Context, task *asynq.Task) error {
		p, err := decode[saveChannelPayload](task)
		if err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
		return handler.SaveChannel(ctx, &model.Channel{
			ID:         p.ChannelID,
			ResourceID: p.ResourceID,
			ProfileID:  model.ProfileID(p.ProfileID),
		})
	})

	mux.HandleFunc(TypeMakeSync, func(ctx context.Context, task *asynq.Task) error {
		p, err := decode[profilePayload](task)
		if err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
		return handler.MakeSync(ctx, model.ProfileID(p.ProfileID))
	})

	mux.HandleFunc(TypeSyncPage, func(ctx context.Context, task *asynq.Task) error {
		p, err := decode[syncPagePayload](task)
		if err != nil {
			return errors.Join(err, asynq.SkipRetry)
		}
		return handler.SyncPage(ctx, model.ProfileID(p.ProfileID), p.calendarEvents())
	})

	mux.HandleFunc(TypeRenewChannels, func(ctx context.Context, task *asynq.Task) error {
		return handler.RenewChannels(ctx)
	})

	mux.Use(observe)
	return mux
}

// observe attaches a task-scoped logger, classifies the result and records metrics
func observe(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		id, _ := asynq.GetTaskID(ctx)
		ctx = logging.With(ctx, logging.From(ctx).With("task_type", task.Type(), "task_id", id))

		err := Classify(ctx, task.Type(), next.ProcessTask(ctx, task))

		switch {
		case err == nil:
			metrics.ObserveTask(task.Type(), metrics.OutcomeDone, start)
		case errors.Is(err, asynq.SkipRetry):
			metrics.ObserveTask(task.Type(), metrics.OutcomeFailed, start)
		default:
			metrics.ObserveTask(task.Type(), metrics.OutcomeRetry, start)
		}
		return err
	})
}

// Classify maps a handler error onto the queue's retry semantics. A profile without
// credentials is skipped, a malformed ticket is not retried, everything else is retried.
func Classify(ctx context.Context, taskType string, err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, model.ErrCredentialsNotFound):
		logging.From(ctx).Warn("skip task, profile needs to log in",
			"type", taskType,
			"error", err.Error(),
		)
		return nil

	case errors.Is(err, model.ErrMalformedTicket):
		return errors.Join(err, asynq.SkipRetry)

	default:
		return err
	}
}

// queueLogger routes the queue's own logs to the process logger
type queueLogger struct{}

func (queueLogger) Debug(args ...any) { logging.Default().Debug(fmt.Sprint(args...), "component", "taskqueue") }
func (queueLogger) Info(args ...any)  { logging.Default().Info(fmt.Sprint(args...), "component", "taskqueue") }
func (queueLogger) Warn(args ...any)  { logging.Default().Warn(fmt.Sprint(args...), "component", "taskqueue") }
func (queueLogger) Error(args ...any) { logging.Default().Error(fmt.Sprint(args...), "component", "taskqueue") }
func (queueLogger) Fatal(args ...any) {
	logging.Default().Error(fmt.Sprint(args...), "component", "taskqueue")
	os.Exit(1)
}
