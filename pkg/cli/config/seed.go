package config

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

// Seed is the TOML file of sync configurations and lookup lists loaded at startup
type Seed struct {
	Syncs   []SeedSync   `toml:"sync"`
	Lookups []SeedLookup `toml:"lookup"`
}

// SeedSync is one [[sync]] table
type SeedSync struct {
	ID                  string            `toml:"id"`
	Name                string            `toml:"name"`
	Source              SeedSource        `toml:"source"`
	Destination         SeedDestination   `toml:"destination"`
	FieldMappings       map[string]string `toml:"field_mappings"`
	TransformRules      []SeedRule        `toml:"transform_rules"`
	AutoSync            bool              `toml:"auto_sync"`
	SyncIntervalMinutes int               `toml:"sync_interval_minutes"`
	// Enabled defaults to true when omitted
	Enabled *bool `toml:"enabled"`
}

type SeedSource struct {
	Kind     string            `toml:"kind"`
	Endpoint string            `toml:"endpoint"`
	Headers  map[string]string `toml:"headers"`
	Payload  map[string]any    `toml:"payload"`
	PageID   string            `toml:"page_id"`
}

type SeedDestination struct {
	Kind     string `toml:"kind"`
	ListName string `toml:"list_name"`
	RecordID string `toml:"record_id"`
}

type SeedRule struct {
	Field  string         `toml:"field"`
	Type   string         `toml:"type"`
	Params map[string]any `toml:"params"`
}

// SeedLookup is one [[lookup]] table; items are keyed by item ID
type SeedLookup struct {
	Name  string                    `toml:"name"`
	Items map[string]map[string]any `toml:"items"`
}

// ToModel converts the table into a SyncConfig
func (s *SeedSync) ToModel() *model.SyncConfig {
	cfg := &model.SyncConfig{
		ID:   model.SyncConfigID(s.ID),
		Name: s.Name,
		Source: model.SourceDescriptor{
			Kind:     types.SourceKind(s.Source.Kind),
			Endpoint: s.Source.Endpoint,
			Headers:  s.Source.Headers,
			Payload:  s.Source.Payload,
			PageID:   s.Source.PageID,
		},
		Destination: model.DestinationDescriptor{
			Kind:     types.DestinationKind(s.Destination.Kind),
			ListName: s.Destination.ListName,
			RecordID: s.Destination.RecordID,
		},
		FieldMappings:       s.FieldMappings,
		AutoSync:            s.AutoSync,
		SyncIntervalMinutes: s.SyncIntervalMinutes,
		Enabled:             s.Enabled == nil || *s.Enabled,
	}
	for _, rule := range s.TransformRules {
		cfg.TransformRules = append(cfg.TransformRules, model.TransformRule{
			Field:  rule.Field,
			Type:   types.RuleType(rule.Type),
			Params: rule.Params,
		})
	}
	return cfg
}

// Validate checks names are unique and every configuration is well formed
func (s *Seed) Validate() error {
	names := make(map[string]bool)
	for i := range s.Syncs {
		sync := &s.Syncs[i]
		if names[sync.Name] {
			return goerr.Wrap(ErrInvalidSeed, "duplicate sync name",
				goerr.V(SyncIndexKey, i), goerr.V("name", sync.Name))
		}
		names[sync.Name] = true

		if err := sync.ToModel().Validate(); err != nil {
			return goerr.Wrap(errors.Join(ErrInvalidSeed, err), "invalid sync configuration", goerr.V(SyncIndexKey, i))
		}
	}

	lists := make(map[string]bool)
	for _, lookup := range s.Lookups {
		if lookup.Name == "" {
			return goerr.Wrap(ErrInvalidSeed, "lookup list name is required")
		}
		if lists[lookup.Name] {
			return goerr.Wrap(ErrInvalidSeed, "duplicate lookup list", goerr.V(ListNameKey, lookup.Name))
		}
		lists[lookup.Name] = true
	}

	return nil
}

// FindSync returns the [[sync]] table whose name or ID equals key
func (s *Seed) FindSync(key string) (*SeedSync, bool) {
	for i := range s.Syncs {
		if s.Syncs[i].Name == key || (s.Syncs[i].ID != "" && s.Syncs[i].ID == key) {
			return &s.Syncs[i], true
		}
	}
	return nil, false
}

// LoadSeed reads and validates a seed file
func LoadSeed(path string) (*Seed, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrSeedNotFound, "seed file does not exist", goerr.V(SeedPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read seed file", goerr.V(SeedPathKey, path))
	}

	var seed Seed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidSeed, err), "failed to parse TOML seed", goerr.V(SeedPathKey, path))
	}

	if err := seed.Validate(); err != nil {
		return nil, goerr.Wrap(err, "seed validation failed", goerr.V(SeedPathKey, path))
	}

	return &seed, nil
}

// Apply stores the seed through the use cases. Lookup lists are replaced.
// A sync configuration matching a stored one by ID, or by name when it has no
// ID, is updated in place; others are created.
func (s *Seed) Apply(ctx context.Context, uc *usecase.UseCases) error {
	logger := logging.From(ctx)

	for _, lookup := range s.Lookups {
		list := &model.LookupList{Name: lookup.Name, Items: lookup.Items}
		if err := uc.Lookup.PutList(ctx, list); err != nil {
			return goerr.Wrap(err, "failed to seed lookup list", goerr.V(ListNameKey, lookup.Name))
		}
	}

	stored, err := uc.SyncConfig.List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list sync configs")
	}
	byName := make(map[string]model.SyncConfigID, len(stored))
	for _, cfg := range stored {
		byName[cfg.Name] = cfg.ID
	}

	for i := range s.Syncs {
		cfg := s.Syncs[i].ToModel()

		existing, err := s.lookupExisting(ctx, uc, cfg, byName)
		if err != nil {
			return err
		}

		if existing == "" {
			created, err := uc.SyncConfig.Create(ctx, cfg)
			if err != nil {
				return goerr.Wrap(err, "failed to seed sync config", goerr.V(SyncIndexKey, i))
			}
			logger.Info("seeded sync config", "id", created.ID, "name", created.Name)
			continue
		}

		cfg.ID = existing
		if _, err := uc.SyncConfig.Update(ctx, cfg); err != nil {
			return goerr.Wrap(err, "failed to update seeded sync config", goerr.V(SyncIndexKey, i))
		}
		logger.Info("updated seeded sync config", "id", cfg.ID, "name", cfg.Name)
	}

	return nil
}

func (s *Seed) lookupExisting(ctx context.Context, uc *usecase.UseCases, cfg *model.SyncConfig, byName map[string]model.SyncConfigID) (model.SyncConfigID, error) {
	if cfg.ID == "" {
		return byName[cfg.Name], nil
	}

	if _, err := uc.SyncConfig.Get(ctx, cfg.ID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to look up seeded sync config", goerr.V(model.SyncConfigIDKey, cfg.ID))
	}
	return cfg.ID, nil
}
