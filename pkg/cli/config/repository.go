package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/repository/firestore"
	"github.com/secmon-lab/ticketcal/pkg/repository/memory"
	"github.com/secmon-lab/ticketcal/pkg/repository/redis"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	redisURL   string
	keyPrefix  string
	projectID  string
	databaseID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Category:    "Repository",
			Usage:       "Repository backend type (memory, redis or firestore)",
			Value:       "redis",
			Sources:     cli.EnvVars("TICKETCAL_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Category:    "Repository",
			Usage:       "Redis URL, e.g. redis://localhost:6379/0 (required when using redis backend)",
			Sources:     cli.EnvVars("TICKETCAL_REDIS_URL"),
			Destination: &r.redisURL,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Category:    "Repository",
			Usage:       "Prefix of every key written to Redis",
			Sources:     cli.EnvVars("TICKETCAL_REDIS_KEY_PREFIX"),
			Destination: &r.keyPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Repository",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("TICKETCAL_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Repository",
			Usage:       "Firestore Database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("TICKETCAL_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// IsMemory reports whether state lives only in this process
func (r *Repository) IsMemory() bool {
	return r.backend == "memory"
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.Bool("redis_url", r.redisURL != ""),
		slog.String("redis_key_prefix", r.keyPrefix),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "redis":
		if r.redisURL == "" {
			return nil, goerr.Wrap(ErrMissingOption, "redis-url is required when using redis backend", goerr.V(OptionKey, "redis-url"))
		}
		repo, err := redis.New(ctx, r.redisURL, redis.WithKeyPrefix(r.keyPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "key_prefix", r.keyPrefix)
		return repo, nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend", goerr.V(OptionKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Warn("Using in-memory repository (development mode, state is lost on exit)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}
