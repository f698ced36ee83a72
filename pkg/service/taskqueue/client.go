package taskqueue

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// Client enqueues tasks to the redis-backed queue
type Client struct {
	client *asynq.Client
}

var _ interfaces.Dispatcher = &Client{}

// NewClient connects to the queue given as a redis:// URL
func NewClient(redisURL string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL for task queue")
	}
	return &Client{client: asynq.NewClient(opt)}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, taskErr error) error {
	if taskErr != nil {
		return taskErr
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			logging.From(ctx).Debug("task already queued", "type", task.Type())
			return nil
		}
		return goerr.Wrap(err, "failed to enqueue task", goerr.V("type", task.Type()))
	}

	logging.From(ctx).Debug("task enqueued", "type", task.Type(), "id", info.ID, "queue", info.Queue)
	return nil
}

func (c *Client) FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	task, err := NewFetchTicketTask(ticketID, overwrite)
	return c.enqueue(ctx, task, err)
}

func (c *Client) SetupChannel(ctx context.Context, profileID model.ProfileID) error {
	task, err := NewSetupChannelTask(profileID)
	return c.enqueue(ctx, task, err)
}

func (c *Client) SaveChannel(ctx context.Context, channel *model.Channel) error {
	task, err := NewSaveChannelTask(channel)
	return c.enqueue(ctx, task, err)
}

func (c *Client) MakeSync(ctx context.Context, profileID model.ProfileID) error {
	task, err := NewMakeSyncTask(profileID)
	return c.enqueue(ctx, task, err)
}

func (c *Client) SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error {
	task, err := NewSyncPageTask(profileID, events)
	return c.enqueue(ctx, task, err)
}
