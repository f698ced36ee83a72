package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/backoff"
	"github.com/secmon-lab/ticketcal/pkg/utils/safe"
)

const maxErrorBody = 4096

// client implements Service over the Zendesk REST API
type client struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
	policy     backoff.Policy
}

var _ Service = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the in-call retry policy
func WithBackoff(p backoff.Policy) Option {
	return func(c *client) {
		c.policy = p
	}
}

// New creates a Zendesk client. baseURL is the account URL such as https://example.zendesk.com
func New(baseURL, email, token string, opts ...Option) (Service, error) {
	if baseURL == "" {
		return nil, goerr.New("Zendesk URL is required")
	}
	if email == "" || token == "" {
		return nil, goerr.New("Zendesk email and API token are required")
	}

	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     backoff.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("zendesk responded %d: %s", e.code, e.body)
}

func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// call sends one request and decodes the JSON response into out when out is not nil
func (c *client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request", goerr.V("path", path))
		}
		payload = raw
	}

	return backoff.Do(ctx, c.policy, isTransient, func(ctx context.Context) error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.email+"/token", c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer safe.DrainAndClose(ctx, resp.Body)

		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return &statusError{code: resp.StatusCode, body: string(msg)}
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
			}
		}
		return nil
	})
}

func (c *client) wrap(err error, msg string, values ...goerr.Option) error {
	var se *statusError
	if errors.As(err, &se) {
		values = append(values, goerr.V("status", se.code))
	}
	if isTransient(err) {
		return goerr.Wrap(model.ErrBackendUnavailable, msg, append(values, goerr.V("error", err.Error()))...)
	}
	return goerr.Wrap(err, msg, values...)
}

func (c *client) ShowTicket(ctx context.Context, id model.TicketID) (*model.Ticket, error) {
	var resp ticketResponse
	if err := c.call(ctx, http.MethodGet, "/api/v2/tickets/"+id.String()+".json", nil, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, goerr.Wrap(model.ErrMalformedTicket, "ticket not found", goerr.V(model.TicketIDKey, id))
		}
		return nil, c.wrap(err, "failed to show ticket", goerr.V(model.TicketIDKey, id))
	}

	t := resp.Ticket
	ticket := &model.Ticket{
		ID:           model.TicketID(t.ID),
		Subject:      t.Subject,
		Description:  t.Description,
		CustomFields: make(map[int64]string, len(t.CustomFields)),
	}
	if t.AssigneeID != nil {
		ticket.AssigneeID = model.ProfileID(*t.AssigneeID)
	}
	for _, f := range t.CustomFields {
		if v, ok := fieldString(f.Value); ok {
			ticket.CustomFields[f.ID] = v
		}
	}
	return ticket, nil
}

// fieldString flattens a custom field value. Only scalar values carry schedule data.
func fieldString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func (c *client) ShowUser(ctx context.Context, id model.ProfileID) (*model.User, error) {
	var resp userResponse
	if err := c.call(ctx, http.MethodGet, "/api/v2/users/"+id.String()+".json", nil, &resp); err != nil {
		return nil, c.wrap(err, "failed to show user", goerr.V(model.ProfileIDKey, id))
	}

	return &model.User{
		ID:       model.ProfileID(resp.User.ID),
		Name:     resp.User.Name,
		TimeZone: resp.User.TimeZone,
	}, nil
}

func (c *client) UpdateTicketsBulk(ctx context.Context, updates []*model.TicketUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	req := updateManyRequest{Tickets: make([]ticketUpdateJSON, 0, len(updates))}
	for _, u := range updates {
		t := ticketUpdateJSON{ID: int64(u.ID)}
		for _, f := range u.CustomFields {
			t.CustomFields = append(t.CustomFields, customFieldJSON{ID: f.ID, Value: f.Value})
		}
		req.Tickets = append(req.Tickets, t)
	}

	if err := c.call(ctx, http.MethodPut, "/api/v2/tickets/update_many.json", &req, nil); err != nil {
		return c.wrap(err, "failed to update tickets", goerr.V("count", len(updates)))
	}
	return nil
}
