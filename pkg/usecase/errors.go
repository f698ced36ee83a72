package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// ErrInvalidOAuthState means a login callback carried a forged or expired state
	ErrInvalidOAuthState = goerr.New("invalid OAuth state")

	// ErrNotConfigured means an operation needs a component that was not wired
	ErrNotConfigured = goerr.New("not configured")
)

// Context keys for error values
const (
	ResourceStateKey = "resource_state"
	BatchSizeKey     = "batch_size"
)
