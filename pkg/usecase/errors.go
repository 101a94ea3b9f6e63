package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrNotionNotConfigured     = goerr.New("notion source is not configured")
	ErrArraySourceWithRecordID = goerr.New("array source cannot update a single destination record")
	ErrNoMappedFields          = goerr.New("no mapped fields in source record")
	ErrEmptyLookupListName     = goerr.New("lookup list name is required")
)

// Context keys for error values
const (
	HistoryIDKey = "history_id"
	TriggerKey   = "trigger"
	ListNameKey  = "list_name"
)
