package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidSyncConfig is returned when a sync configuration fails validation
	ErrInvalidSyncConfig = goerr.New("invalid sync configuration")
	// ErrInvalidTransformRule is returned when a transform rule fails validation
	ErrInvalidTransformRule = goerr.New("invalid transform rule")

	// ErrSourceFetch is returned when the source document cannot be obtained
	ErrSourceFetch = goerr.New("failed to fetch source document")
	// ErrSourceKindNotImplemented is returned for source kinds that are declared but not supported
	ErrSourceKindNotImplemented = goerr.New("source kind is not implemented")
	// ErrInvalidSourceDocument is returned when the source is not a JSON object (or array of objects)
	ErrInvalidSourceDocument = goerr.New("source document must be a JSON object")
	// ErrDestinationNotFound is returned when the target destination record does not exist
	ErrDestinationNotFound = goerr.New("destination record not found")
)

// Context keys for error values
const (
	SyncConfigIDKey = "sync_config_id"
	SourceKindKey   = "source_kind"
	EndpointKey     = "endpoint"
	FieldKey        = "field"
	RuleIndexKey    = "rule_index"
	RuleTypeKey     = "rule_type"
	CollectionKey   = "collection"
	RecordIDKey     = "record_id"
)

// GeneralField is the field marker used for errors that are not tied to a single field
const GeneralField = "general"
