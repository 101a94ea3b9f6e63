package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// SyncConfigRepository defines the interface for SyncConfig persistence
type SyncConfigRepository interface {
	// Create creates a new sync configuration. An empty ID is assigned a UUID.
	Create(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error)

	// Get retrieves a sync configuration by ID
	Get(ctx context.Context, id model.SyncConfigID) (*model.SyncConfig, error)

	// List retrieves all sync configurations ordered by name
	List(ctx context.Context) ([]*model.SyncConfig, error)

	// Update replaces an existing sync configuration. LastSyncAt is preserved.
	Update(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error)

	// UpdateLastSyncAt sets only the last successful sync timestamp
	UpdateLastSyncAt(ctx context.Context, id model.SyncConfigID, at time.Time) error

	// Delete deletes a sync configuration by ID
	Delete(ctx context.Context, id model.SyncConfigID) error
}
