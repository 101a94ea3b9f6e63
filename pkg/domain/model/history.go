package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

// DefaultHistoryCapacity is the number of history entries kept before the oldest is evicted
const DefaultHistoryCapacity = 100

// HistoryEntryID is a UUID-based identifier for HistoryEntry
type HistoryEntryID string

// NewHistoryEntryID generates a new UUID v4 HistoryEntryID
func NewHistoryEntryID() HistoryEntryID {
	return HistoryEntryID(uuid.New().String())
}

// HistoryEntry is the audit record of one sync run
type HistoryEntry struct {
	ID        HistoryEntryID
	ConfigID  SyncConfigID
	Trigger   types.Trigger
	Timestamp time.Time
	Duration  time.Duration
	// SourceDigest is a hash of the source document, empty when the fetch failed
	SourceDigest string
	Result       SyncResult
}
