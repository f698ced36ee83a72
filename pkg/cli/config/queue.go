package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/service/taskqueue"
)

// Queue holds CLI flags for task dispatching
type Queue struct {
	url         string
	concurrency int
	renewLead   time.Duration
}

func (x *Queue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "queue-url",
			Category:    "Queue",
			Usage:       "Redis URL of the task queue. Without it, tasks run inside the serving process.",
			Sources:     cli.EnvVars("TICKETCAL_QUEUE_URL"),
			Destination: &x.url,
		},
		&cli.IntFlag{
			Name:        "queue-concurrency",
			Category:    "Queue",
			Usage:       "Number of tasks a worker runs at once",
			Value:       10,
			Sources:     cli.EnvVars("TICKETCAL_QUEUE_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.DurationFlag{
			Name:        "renew-lead",
			Category:    "Queue",
			Usage:       "How long before expiry a push channel is renewed",
			Value:       0,
			Sources:     cli.EnvVars("TICKETCAL_RENEW_LEAD"),
			Destination: &x.renewLead,
		},
	}
}

// Enabled reports whether tasks go through the redis-backed queue
func (x *Queue) Enabled() bool {
	return x.url != ""
}

func (x *Queue) Concurrency() int          { return x.concurrency }
func (x *Queue) RenewLead() time.Duration { return x.renewLead }

func (x Queue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.url != ""),
		slog.Int("concurrency", x.concurrency),
		slog.Duration("renew_lead", x.renewLead),
	)
}

// NewClient connects the dispatching side of the queue
func (x *Queue) NewClient() (*taskqueue.Client, error) {
	if !x.Enabled() {
		return nil, goerr.Wrap(ErrMissingOption, "queue URL is required", goerr.V(OptionKey, "queue-url"))
	}
	return taskqueue.NewClient(x.url)
}

// NewServer builds the consuming side of the queue
func (x *Queue) NewServer(handler interfaces.TaskHandler, opts ...taskqueue.ServerOption) (*taskqueue.Server, error) {
	if !x.Enabled() {
		return nil, goerr.Wrap(ErrMissingOption, "queue URL is required", goerr.V(OptionKey, "queue-url"))
	}
	opts = append([]taskqueue.ServerOption{taskqueue.WithConcurrency(x.concurrency)}, opts...)
	return taskqueue.NewServer(x.url, handler, opts...)
}
