package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	credential *credentialRepository
	link       *linkRepository
	channel    *channelRepository
	schedule   *scheduleRepository
	syncCursor *syncCursorRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends prefix + "_" to every collection name
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.credential.collectionPrefix = prefix
		f.link.collectionPrefix = prefix
		f.channel.collectionPrefix = prefix
		f.schedule.collectionPrefix = prefix
		f.syncCursor.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		credential: newCredentialRepository(client),
		link:       newLinkRepository(client),
		channel:    newChannelRepository(client),
		schedule:   newScheduleRepository(client),
		syncCursor: newSyncCursorRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Credential() interfaces.CredentialRepository {
	return f.credential
}

func (f *Firestore) Link() interfaces.LinkRepository {
	return f.link
}

func (f *Firestore) Channel() interfaces.ChannelRepository {
	return f.channel
}

func (f *Firestore) Schedule() interfaces.ScheduleRepository {
	return f.schedule
}

func (f *Firestore) SyncCursor() interfaces.SyncCursorRepository {
	return f.syncCursor
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
