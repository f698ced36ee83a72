package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrMissingFieldID   = goerr.New("custom field ID is required")
	ErrDuplicateFieldID = goerr.New("duplicate custom field ID")
	ErrMissingOption    = goerr.New("required option is not set")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FieldKey      = "field"
	FieldIDKey    = "field_id"
	OptionKey     = "option"
)
