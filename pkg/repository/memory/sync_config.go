package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

type syncConfigRepository struct {
	mu      sync.RWMutex
	configs map[model.SyncConfigID]*model.SyncConfig
}

func newSyncConfigRepository() *syncConfigRepository {
	return &syncConfigRepository{
		configs: make(map[model.SyncConfigID]*model.SyncConfig),
	}
}

// copySyncConfig creates a deep copy of a sync configuration
func copySyncConfig(cfg *model.SyncConfig) *model.SyncConfig {
	copied := *cfg

	if cfg.Source.Headers != nil {
		copied.Source.Headers = make(map[string]string, len(cfg.Source.Headers))
		for k, v := range cfg.Source.Headers {
			copied.Source.Headers[k] = v
		}
	}
	copied.Source.Payload = copyFields(cfg.Source.Payload)

	if cfg.FieldMappings != nil {
		copied.FieldMappings = make(map[string]string, len(cfg.FieldMappings))
		for k, v := range cfg.FieldMappings {
			copied.FieldMappings[k] = v
		}
	}

	if cfg.TransformRules != nil {
		copied.TransformRules = make([]model.TransformRule, len(cfg.TransformRules))
		for i, rule := range cfg.TransformRules {
			copied.TransformRules[i] = model.TransformRule{
				Field:  rule.Field,
				Type:   rule.Type,
				Params: copyFields(rule.Params),
			}
		}
	}

	if cfg.LastSyncAt != nil {
		t := *cfg.LastSyncAt
		copied.LastSyncAt = &t
	}

	return &copied
}

func (r *syncConfigRepository) Create(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copySyncConfig(cfg)
	if created.ID == "" {
		created.ID = model.NewSyncConfigID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.configs[created.ID] = created
	return copySyncConfig(created), nil
}

func (r *syncConfigRepository) Get(ctx context.Context, id model.SyncConfigID) (*model.SyncConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, id))
	}

	return copySyncConfig(cfg), nil
}

func (r *syncConfigRepository) List(ctx context.Context) ([]*model.SyncConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]*model.SyncConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		configs = append(configs, copySyncConfig(cfg))
	}

	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Name != configs[j].Name {
			return configs[i].Name < configs[j].Name
		}
		return configs[i].ID < configs[j].ID
	})

	return configs, nil
}

func (r *syncConfigRepository) Update(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.configs[cfg.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, cfg.ID))
	}

	updated := copySyncConfig(cfg)
	updated.CreatedAt = existing.CreatedAt
	updated.LastSyncAt = existing.LastSyncAt
	updated.UpdatedAt = time.Now().UTC()

	r.configs[updated.ID] = updated
	return copySyncConfig(updated), nil
}

func (r *syncConfigRepository) UpdateLastSyncAt(ctx context.Context, id model.SyncConfigID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.configs[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, id))
	}

	t := at.UTC()
	existing.LastSyncAt = &t
	return nil
}

func (r *syncConfigRepository) Delete(ctx context.Context, id model.SyncConfigID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[id]; !exists {
		return goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, id))
	}

	delete(r.configs, id)
	return nil
}
