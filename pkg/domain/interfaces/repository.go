package interfaces

// Repository is the key-value state shared by every task. There is no cross-key
// atomicity: concurrent writers to the same key resolve as last write wins.
type Repository interface {
	Credential() CredentialRepository
	Link() LinkRepository
	Channel() ChannelRepository
	Schedule() ScheduleRepository
	SyncCursor() SyncCursorRepository

	Close() error
}
