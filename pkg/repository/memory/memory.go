package memory

import (
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
)

// Memory is an in-process repository for development and tests. State is lost on exit.
type Memory struct {
	credential *credentialRepository
	link       *linkRepository
	channel    *channelRepository
	schedule   *scheduleRepository
	syncCursor *syncCursorRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		credential: newCredentialRepository(),
		link:       newLinkRepository(),
		channel:    newChannelRepository(),
		schedule:   newScheduleRepository(),
		syncCursor: newSyncCursorRepository(),
	}
}

func (m *Memory) Credential() interfaces.CredentialRepository {
	return m.credential
}

func (m *Memory) Link() interfaces.LinkRepository {
	return m.link
}

func (m *Memory) Channel() interfaces.ChannelRepository {
	return m.channel
}

func (m *Memory) Schedule() interfaces.ScheduleRepository {
	return m.schedule
}

func (m *Memory) SyncCursor() interfaces.SyncCursorRepository {
	return m.syncCursor
}

func (m *Memory) Close() error {
	return nil
}
