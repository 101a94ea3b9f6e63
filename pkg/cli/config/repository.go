package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/repository/firestore"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
	"github.com/secmon-lab/tributary/pkg/repository/mongodb"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
	BackendMongoDB   = "mongodb"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	historyCapacity  int

	contentBackend string
	mongoURI       string
	mongoDatabase  string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore or memory)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("TRIBUTARY_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TRIBUTARY_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TRIBUTARY_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "collection-prefix",
			Usage:       "Prefix prepended to every Firestore and MongoDB collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("TRIBUTARY_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.IntFlag{
			Name:        "history-capacity",
			Usage:       "Maximum number of history entries kept in the store",
			Category:    "Repository",
			Value:       model.DefaultHistoryCapacity,
			Sources:     cli.EnvVars("TRIBUTARY_HISTORY_CAPACITY"),
			Destination: &r.historyCapacity,
		},
		&cli.StringFlag{
			Name:        "content-backend",
			Usage:       "Destination content store (empty to use the repository backend, or mongodb)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TRIBUTARY_CONTENT_BACKEND"),
			Destination: &r.contentBackend,
		},
		&cli.StringFlag{
			Name:        "mongodb-uri",
			Usage:       "MongoDB connection URI (required when content backend is mongodb)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TRIBUTARY_MONGODB_URI"),
			Destination: &r.mongoURI,
		},
		&cli.StringFlag{
			Name:        "mongodb-database",
			Usage:       "MongoDB database name",
			Category:    "Repository",
			Value:       "tributary",
			Sources:     cli.EnvVars("TRIBUTARY_MONGODB_DATABASE"),
			Destination: &r.mongoDatabase,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("collection_prefix", r.collectionPrefix),
		slog.Int("history_capacity", r.historyCapacity),
		slog.String("content_backend", r.contentBackend),
		slog.Int("mongodb_uri.len", len(r.mongoURI)),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	if r.historyCapacity <= 0 {
		return nil, goerr.Wrap(ErrInvalidFlag, "history capacity must be positive",
			goerr.V(FlagKey, "history-capacity"), goerr.V("value", r.historyCapacity))
	}

	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID,
			firestore.WithCollectionPrefix(r.collectionPrefix),
			firestore.WithHistoryCapacity(r.historyCapacity),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(memory.WithHistoryCapacity(r.historyCapacity)), nil

	default:
		return nil, goerr.Wrap(ErrInvalidFlag, "invalid repository backend",
			goerr.V(FlagKey, "repository-backend"), goerr.V("value", r.backend))
	}
}

// ConfigureContent returns a separate destination content store, or nil when
// destination records live in the repository backend. The returned closer is
// never nil.
func (r *Repository) ConfigureContent(ctx context.Context) (interfaces.ContentRepository, func(), error) {
	noop := func() {}

	switch r.contentBackend {
	case "":
		return nil, noop, nil

	case BackendMongoDB:
		if r.mongoURI == "" {
			return nil, noop, goerr.Wrap(ErrMissingFlag, "mongodb-uri is required when content backend is mongodb",
				goerr.V(FlagKey, "mongodb-uri"))
		}
		content, err := mongodb.New(ctx, r.mongoURI, r.mongoDatabase, mongodb.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to initialize mongodb content repository")
		}
		logging.Default().Info("Using MongoDB content repository", "database", r.mongoDatabase)

		closer := func() {
			if err := content.Close(); err != nil {
				logging.Default().Error("failed to close mongodb client", "error", err.Error())
			}
		}
		return content, closer, nil

	default:
		return nil, noop, goerr.Wrap(ErrInvalidFlag, "invalid content backend",
			goerr.V(FlagKey, "content-backend"), goerr.V("value", r.contentBackend))
	}
}
