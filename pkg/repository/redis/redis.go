package redis

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
)

// Redis stores state in the key layout shared with earlier deployments:
//
//	oauth2:<profile>        credential blob
//	ticket:<ticket>         hash {event_id, profile_id}
//	event:<event>           ticket id
//	notifications:<profile> hash {channel_id, resource_id}
//	sync:<profile>          sync token
//	schedule                sorted set of profiles scored by expiration (epoch seconds)
type Redis struct {
	client     *goredis.Client
	keys       keyspace
	credential *credentialRepository
	link       *linkRepository
	channel    *channelRepository
	schedule   *scheduleRepository
	syncCursor *syncCursorRepository
}

var _ interfaces.Repository = &Redis{}

type Option func(*Redis)

// WithKeyPrefix prepends prefix + ":" to every key. Used to isolate tests.
func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.keys.prefix = prefix
	}
}

// New connects to the redis server given as a redis:// URL
func New(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL")
	}

	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", opt.Addr))
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient builds the repository over an existing client. Close closes the client.
func NewWithClient(client *goredis.Client, opts ...Option) *Redis {
	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}

	r.credential = &credentialRepository{client: client, keys: &r.keys}
	r.link = &linkRepository{client: client, keys: &r.keys}
	r.channel = &channelRepository{client: client, keys: &r.keys}
	r.schedule = &scheduleRepository{client: client, keys: &r.keys}
	r.syncCursor = &syncCursorRepository{client: client, keys: &r.keys}
	return r
}

func (r *Redis) Credential() interfaces.CredentialRepository {
	return r.credential
}

func (r *Redis) Link() interfaces.LinkRepository {
	return r.link
}

func (r *Redis) Channel() interfaces.ChannelRepository {
	return r.channel
}

func (r *Redis) Schedule() interfaces.ScheduleRepository {
	return r.schedule
}

func (r *Redis) SyncCursor() interfaces.SyncCursorRepository {
	return r.syncCursor
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type keyspace struct {
	prefix string
}

func (k *keyspace) key(parts ...string) string {
	key := ""
	if k.prefix != "" {
		key = k.prefix + ":"
	}
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}
