package interfaces

import (
	"context"

	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// SyncHistoryRepository is the bounded, append-only log of sync runs
type SyncHistoryRepository interface {
	// Append stores the entry and evicts the oldest entries beyond capacity
	Append(ctx context.Context, entry *model.HistoryEntry) error

	// List returns entries newest first. An empty configID lists every config.
	// limit <= 0 returns everything retained.
	List(ctx context.Context, configID model.SyncConfigID, limit int) ([]*model.HistoryEntry, error)
}
