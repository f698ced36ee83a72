package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

const (
	fieldEventID   = "event_id"
	fieldProfileID = "profile_id"
)

type linkRepository struct {
	client *goredis.Client
	keys   *keyspace
}

var _ interfaces.LinkRepository = &linkRepository{}

func (r *linkRepository) ticketKey(id model.TicketID) string {
	return r.keys.key("ticket", id.String())
}

func (r *linkRepository) eventKey(id model.EventID) string {
	return r.keys.key("event", id.String())
}

func (r *linkRepository) GetByTicket(ctx context.Context, ticketID model.TicketID) (*model.Link, error) {
	values, err := r.client.HGetAll(ctx, r.ticketKey(ticketID)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get ticket link", goerr.V(model.TicketIDKey, ticketID))
	}
	if len(values) == 0 || values[fieldEventID] == "" {
		return nil, nil
	}

	profileID, err := model.ParseProfileID(values[fieldProfileID])
	if err != nil {
		return nil, goerr.Wrap(err, "corrupt ticket link", goerr.V(model.TicketIDKey, ticketID))
	}

	return &model.Link{
		TicketID:  ticketID,
		EventID:   model.EventID(values[fieldEventID]),
		ProfileID: profileID,
	}, nil
}

func (r *linkRepository) GetTicketByEvent(ctx context.Context, eventID model.EventID) (model.TicketID, bool, error) {
	raw, err := r.client.Get(ctx, r.eventKey(eventID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, goerr.Wrap(err, "failed to get event link", goerr.V(model.EventIDKey, eventID))
	}

	ticketID, err := model.ParseTicketID(raw)
	if err != nil {
		return 0, false, goerr.Wrap(err, "corrupt event link", goerr.V(model.EventIDKey, eventID))
	}
	return ticketID, true, nil
}

// Bind writes both directions in one MULTI/EXEC
func (r *linkRepository) Bind(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, r.ticketKey(link.TicketID), map[string]any{
			fieldEventID:   link.EventID.String(),
			fieldProfileID: strconv.FormatInt(int64(link.ProfileID), 10),
		})
		pipe.Set(ctx, r.eventKey(link.EventID), link.TicketID.String(), 0)
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to bind link",
			goerr.V(model.TicketIDKey, link.TicketID),
			goerr.V(model.EventIDKey, link.EventID))
	}
	return nil
}

func (r *linkRepository) UnbindEvent(ctx context.Context, eventID model.EventID) error {
	if err := r.client.Del(ctx, r.eventKey(eventID)).Err(); err != nil {
		return goerr.Wrap(err, "failed to unbind event", goerr.V(model.EventIDKey, eventID))
	}
	return nil
}
