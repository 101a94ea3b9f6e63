package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

// SyncConfigID is a UUID-based identifier for SyncConfig
type SyncConfigID string

// NewSyncConfigID generates a new UUID v4 SyncConfigID
func NewSyncConfigID() SyncConfigID {
	return SyncConfigID(uuid.New().String())
}

func (id SyncConfigID) String() string {
	return string(id)
}

// SyncConfig is the persistent definition of one synchronization
type SyncConfig struct {
	ID          SyncConfigID
	Name        string
	Source      SourceDescriptor
	Destination DestinationDescriptor
	// FieldMappings maps a source field to a destination field
	FieldMappings       map[string]string
	TransformRules      []TransformRule
	AutoSync            bool
	SyncIntervalMinutes int
	Enabled             bool
	LastSyncAt          *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SourceDescriptor tells the executor where to read the source document
type SourceDescriptor struct {
	Kind     types.SourceKind
	Endpoint string
	Headers  map[string]string `masq:"secret"`
	Payload  map[string]any
	PageID   string
}

// DestinationDescriptor tells the executor where to write
type DestinationDescriptor struct {
	Kind     types.DestinationKind
	ListName string
	// RecordID selects an existing record to update. Empty creates a new record.
	RecordID string
}

// Collection returns the content collection the destination writes into
func (d DestinationDescriptor) Collection() string {
	switch d.Kind {
	case types.DestinationKindPage:
		return "pages"
	case types.DestinationKindArticle:
		return "articles"
	case types.DestinationKindCustomList:
		return "list_" + d.ListName
	default:
		return string(d.Kind)
	}
}

// Schedulable reports whether the scheduler should keep a timer for this config
func (c *SyncConfig) Schedulable() bool {
	return c.Enabled && c.AutoSync && c.SyncIntervalMinutes > 0
}

// SyncInterval returns the configured interval as a duration
func (c *SyncConfig) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}

// Validate checks if the SyncConfig is valid
func (c *SyncConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrInvalidSyncConfig, "name is required", goerr.V(SyncConfigIDKey, c.ID))
	}

	if !c.Source.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidSyncConfig, "invalid source kind",
			goerr.V(SyncConfigIDKey, c.ID), goerr.V(SourceKindKey, c.Source.Kind))
	}
	switch c.Source.Kind {
	case types.SourceKindInline:
		if c.Source.Payload == nil {
			return goerr.Wrap(ErrInvalidSyncConfig, "inline source requires a payload", goerr.V(SyncConfigIDKey, c.ID))
		}
	case types.SourceKindAPI:
		if !strings.HasPrefix(c.Source.Endpoint, "http://") && !strings.HasPrefix(c.Source.Endpoint, "https://") {
			return goerr.Wrap(ErrInvalidSyncConfig, "api source requires an http(s) endpoint",
				goerr.V(SyncConfigIDKey, c.ID), goerr.V(EndpointKey, c.Source.Endpoint))
		}
	case types.SourceKindNotion:
		if c.Source.PageID == "" {
			return goerr.Wrap(ErrInvalidSyncConfig, "notion source requires a page ID", goerr.V(SyncConfigIDKey, c.ID))
		}
	}

	if !c.Destination.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidSyncConfig, "invalid destination kind",
			goerr.V(SyncConfigIDKey, c.ID), goerr.V("destination_kind", c.Destination.Kind))
	}
	if c.Destination.Kind == types.DestinationKindCustomList && c.Destination.ListName == "" {
		return goerr.Wrap(ErrInvalidSyncConfig, "custom list destination requires a list name", goerr.V(SyncConfigIDKey, c.ID))
	}

	for src, dst := range c.FieldMappings {
		if strings.ContainsAny(dst, ".$") {
			return goerr.Wrap(ErrInvalidSyncConfig, "destination field must not contain '.' or '$'",
				goerr.V(SyncConfigIDKey, c.ID), goerr.V("source_field", src), goerr.V(FieldKey, dst))
		}
	}

	if c.SyncIntervalMinutes < 0 {
		return goerr.Wrap(ErrInvalidSyncConfig, "sync interval must not be negative",
			goerr.V(SyncConfigIDKey, c.ID), goerr.V("interval", c.SyncIntervalMinutes))
	}

	for i, rule := range c.TransformRules {
		if err := rule.Validate(); err != nil {
			return goerr.Wrap(err, "invalid transform rule", goerr.V(SyncConfigIDKey, c.ID), goerr.V(RuleIndexKey, i))
		}
	}

	return nil
}

// EffectiveMappings returns the mappings with empty destinations removed
func (c *SyncConfig) EffectiveMappings() map[string]string {
	mappings := make(map[string]string, len(c.FieldMappings))
	for src, dst := range c.FieldMappings {
		if src == "" || dst == "" {
			continue
		}
		mappings[src] = dst
	}
	return mappings
}
