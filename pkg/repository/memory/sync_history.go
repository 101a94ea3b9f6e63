package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// syncHistoryRepository keeps entries in insertion order and drops the oldest beyond capacity
type syncHistoryRepository struct {
	mu       sync.RWMutex
	capacity int
	entries  []*model.HistoryEntry
}

func newSyncHistoryRepository(capacity int) *syncHistoryRepository {
	return &syncHistoryRepository{
		capacity: capacity,
	}
}

func copyHistoryEntry(entry *model.HistoryEntry) *model.HistoryEntry {
	copied := *entry
	copied.Result.Errors = append([]model.SyncError{}, entry.Result.Errors...)
	copied.Result.RecordIDs = append([]string{}, entry.Result.RecordIDs...)
	copied.Result.Changes = make([]model.FieldChange, len(entry.Result.Changes))
	for i, c := range entry.Result.Changes {
		copied.Result.Changes[i] = model.FieldChange{
			Field:    c.Field,
			OldValue: copyValue(c.OldValue),
			NewValue: copyValue(c.NewValue),
		}
	}
	return &copied
}

func (r *syncHistoryRepository) Append(ctx context.Context, entry *model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyHistoryEntry(entry)
	if stored.ID == "" {
		stored.ID = model.NewHistoryEntryID()
	}

	r.entries = append(r.entries, stored)
	if overflow := len(r.entries) - r.capacity; overflow > 0 {
		// Release evicted entries for the garbage collector
		for i := 0; i < overflow; i++ {
			r.entries[i] = nil
		}
		r.entries = append([]*model.HistoryEntry{}, r.entries[overflow:]...)
	}

	return nil
}

func (r *syncHistoryRepository) List(ctx context.Context, configID model.SyncConfigID, limit int) ([]*model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.HistoryEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if configID != "" && entry.ConfigID != configID {
			continue
		}
		entries = append(entries, copyHistoryEntry(entry))
		if limit > 0 && len(entries) >= limit {
			break
		}
	}

	return entries, nil
}
