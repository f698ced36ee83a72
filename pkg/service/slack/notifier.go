package slack

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// maxFieldBytes keeps attachment fields well below the message size limit
	maxFieldBytes = 2000
	maxFields     = 20
)

// Notifier posts operational alerts to a Slack channel
type Notifier struct {
	api       *slack.Client
	channelID string
	source    string
}

// Option is a functional option for Notifier configuration
type Option func(*notifierConfig)

type notifierConfig struct {
	apiURL string
	source string
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *notifierConfig) {
		c.apiURL = url
	}
}

// WithSource sets the name shown as the origin of alerts
func WithSource(source string) Option {
	return func(c *notifierConfig) {
		c.source = source
	}
}

// New creates a notifier posting with the given bot token into channelID
func New(token, channelID string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack alert channel is required")
	}

	cfg := notifierConfig{source: "ticketcal"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &Notifier{
		api:       slack.New(token, apiOpts...),
		channelID: channelID,
		source:    cfg.source,
	}, nil
}

// Alert posts the title and the error, with its goerr values as fields
func (n *Notifier) Alert(ctx context.Context, title string, err error) error {
	attachment := slack.Attachment{
		Color:  "danger",
		Title:  title,
		Footer: n.source,
	}
	if err != nil {
		attachment.Text = truncateToMaxBytes(err.Error(), maxFieldBytes)
		attachment.Fields = valueFields(err)
	}

	_, _, postErr := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(fmt.Sprintf("[%s] %s", n.source, title), false),
		slack.MsgOptionAttachments(attachment),
	)
	if postErr != nil {
		return goerr.Wrap(postErr, "failed to post alert to Slack", goerr.V("channel_id", n.channelID))
	}
	return nil
}

func valueFields(err error) []slack.AttachmentField {
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return nil
	}

	values := ge.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxFields {
		keys = keys[:maxFields]
	}

	fields := make([]slack.AttachmentField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, slack.AttachmentField{
			Title: k,
			Value: truncateToMaxBytes(fmt.Sprint(values[k]), maxFieldBytes),
			Short: true,
		})
	}
	return fields
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
