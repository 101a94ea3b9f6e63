package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	SyncConfig() SyncConfigRepository
	SyncHistory() SyncHistoryRepository
	Content() ContentRepository
	LookupList() LookupListRepository

	// Close releases the underlying client
	Close() error
}
