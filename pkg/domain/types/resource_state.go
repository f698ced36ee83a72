package types

// ResourceState is the state carried by a calendar push notification
type ResourceState string

const (
	// ResourceStateSync is the handshake sent right after a channel is created
	ResourceStateSync ResourceState = "sync"
	// ResourceStateExists signals that watched resources changed
	ResourceStateExists ResourceState = "exists"
	// ResourceStateNotExists signals that the watched resource was deleted
	ResourceStateNotExists ResourceState = "not_exists"
)

// IsKnown reports whether the state triggers any processing
func (s ResourceState) IsKnown() bool {
	switch s {
	case ResourceStateSync,
		ResourceStateExists:
		return true
	default:
		return false
	}
}

// String returns the string representation of the resource state
func (s ResourceState) String() string {
	return string(s)
}
