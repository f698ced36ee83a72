package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// AppConfig is the TOML configuration file
type AppConfig struct {
	Fields FieldsConfig `toml:"fields"`
}

// FieldsConfig maps the four schedule values to ticket custom field IDs
type FieldsConfig struct {
	StartDate int64 `toml:"start_date"`
	StartTime int64 `toml:"start_time"`
	EndDate   int64 `toml:"end_date"`
	EndTime   int64 `toml:"end_time"`
}

// Validate checks that every field ID is set and no two share an ID
func (a *AppConfig) Validate() error {
	fields := []struct {
		name string
		id   int64
	}{
		{"start_date", a.Fields.StartDate},
		{"start_time", a.Fields.StartTime},
		{"end_date", a.Fields.EndDate},
		{"end_time", a.Fields.EndTime},
	}

	seen := make(map[int64]string, len(fields))
	for _, f := range fields {
		if f.id <= 0 {
			return goerr.Wrap(ErrMissingFieldID, "field ID must be positive",
				goerr.V(FieldKey, f.name), goerr.V(FieldIDKey, f.id))
		}
		if prev, ok := seen[f.id]; ok {
			return goerr.Wrap(ErrDuplicateFieldID, "two schedule fields share an ID",
				goerr.V(FieldKey, f.name), goerr.V("other_field", prev), goerr.V(FieldIDKey, f.id))
		}
		seen[f.id] = f.name
	}
	return nil
}

// FieldIDs returns the field mapping used by the event translator
func (a *AppConfig) FieldIDs() model.FieldIDs {
	return model.FieldIDs{
		StartDate: a.Fields.StartDate,
		StartTime: a.Fields.StartTime,
		EndDate:   a.Fields.EndDate,
		EndTime:   a.Fields.EndTime,
	}
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// App holds the flags shared by every command that runs use cases
type App struct {
	configPath string
	baseURL    string
	apiToken   string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file holding the [fields] custom field IDs",
			Value:       "ticketcal.toml",
			Sources:     cli.EnvVars("TICKETCAL_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL of this service, used for calendar webhooks and OAuth redirects",
			Sources:     cli.EnvVars("TICKETCAL_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "api-token",
			Usage:       "Shared token verifying ticket webhooks and calendar notifications",
			Sources:     cli.EnvVars("TICKETCAL_API_TOKEN"),
			Destination: &x.apiToken,
		},
	}
}

// Configure loads the configuration file and checks the required flags
func (x *App) Configure() (*AppConfig, error) {
	if x.baseURL == "" {
		return nil, goerr.Wrap(ErrMissingOption, "base URL is required", goerr.V(OptionKey, "base-url"))
	}
	if x.apiToken == "" {
		return nil, goerr.Wrap(ErrMissingOption, "API token is required", goerr.V(OptionKey, "api-token"))
	}
	return LoadAppConfiguration(x.configPath)
}

func (x *App) BaseURL() string  { return x.baseURL }
func (x *App) APIToken() string { return x.apiToken }

func (x App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("base_url", x.baseURL),
		slog.Bool("api_token", x.apiToken != ""),
	)
}
