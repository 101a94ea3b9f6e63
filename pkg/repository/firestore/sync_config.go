package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type syncConfigDocument struct {
	ID                  string                  `firestore:"id"`
	Name                string                  `firestore:"name"`
	Source              sourceDocument          `firestore:"source"`
	Destination         destinationDocument     `firestore:"destination"`
	FieldMappings       map[string]string       `firestore:"field_mappings"`
	TransformRules      []transformRuleDocument `firestore:"transform_rules"`
	AutoSync            bool                    `firestore:"auto_sync"`
	SyncIntervalMinutes int                     `firestore:"sync_interval_minutes"`
	Enabled             bool                    `firestore:"enabled"`
	LastSyncAt          *time.Time              `firestore:"last_sync_at,omitempty"`
	CreatedAt           time.Time               `firestore:"created_at"`
	UpdatedAt           time.Time               `firestore:"updated_at"`
}

type sourceDocument struct {
	Kind     string            `firestore:"kind"`
	Endpoint string            `firestore:"endpoint"`
	Headers  map[string]string `firestore:"headers,omitempty"`
	Payload  map[string]any    `firestore:"payload,omitempty"`
	PageID   string            `firestore:"page_id"`
}

type destinationDocument struct {
	Kind     string `firestore:"kind"`
	ListName string `firestore:"list_name"`
	RecordID string `firestore:"record_id"`
}

type transformRuleDocument struct {
	Field  string         `firestore:"field"`
	Type   string         `firestore:"type"`
	Params map[string]any `firestore:"params,omitempty"`
}

type syncConfigRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSyncConfigRepository(client *firestore.Client) *syncConfigRepository {
	return &syncConfigRepository{
		client: client,
	}
}

func (r *syncConfigRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, SyncConfigCollection))
}

func syncConfigToDocument(cfg *model.SyncConfig) *syncConfigDocument {
	doc := &syncConfigDocument{
		ID:   string(cfg.ID),
		Name: cfg.Name,
		Source: sourceDocument{
			Kind:     string(cfg.Source.Kind),
			Endpoint: cfg.Source.Endpoint,
			Headers:  cfg.Source.Headers,
			Payload:  cfg.Source.Payload,
			PageID:   cfg.Source.PageID,
		},
		Destination: destinationDocument{
			Kind:     string(cfg.Destination.Kind),
			ListName: cfg.Destination.ListName,
			RecordID: cfg.Destination.RecordID,
		},
		FieldMappings:       cfg.FieldMappings,
		AutoSync:            cfg.AutoSync,
		SyncIntervalMinutes: cfg.SyncIntervalMinutes,
		Enabled:             cfg.Enabled,
		LastSyncAt:          cfg.LastSyncAt,
		CreatedAt:           cfg.CreatedAt,
		UpdatedAt:           cfg.UpdatedAt,
	}

	for _, rule := range cfg.TransformRules {
		doc.TransformRules = append(doc.TransformRules, transformRuleDocument{
			Field:  rule.Field,
			Type:   string(rule.Type),
			Params: rule.Params,
		})
	}

	return doc
}

func syncConfigToModel(doc *syncConfigDocument) *model.SyncConfig {
	cfg := &model.SyncConfig{
		ID:   model.SyncConfigID(doc.ID),
		Name: doc.Name,
		Source: model.SourceDescriptor{
			Kind:     types.SourceKind(doc.Source.Kind),
			Endpoint: doc.Source.Endpoint,
			Headers:  doc.Source.Headers,
			Payload:  normalizeFields(doc.Source.Payload),
			PageID:   doc.Source.PageID,
		},
		Destination: model.DestinationDescriptor{
			Kind:     types.DestinationKind(doc.Destination.Kind),
			ListName: doc.Destination.ListName,
			RecordID: doc.Destination.RecordID,
		},
		FieldMappings:       doc.FieldMappings,
		AutoSync:            doc.AutoSync,
		SyncIntervalMinutes: doc.SyncIntervalMinutes,
		Enabled:             doc.Enabled,
		LastSyncAt:          doc.LastSyncAt,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}

	for _, rule := range doc.TransformRules {
		cfg.TransformRules = append(cfg.TransformRules, model.TransformRule{
			Field:  rule.Field,
			Type:   types.RuleType(rule.Type),
			Params: normalizeFields(rule.Params),
		})
	}

	return cfg
}

func (r *syncConfigRepository) get(ctx context.Context, id model.SyncConfigID) (*syncConfigDocument, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get sync config", goerr.V(model.SyncConfigIDKey, id))
	}

	var doc syncConfigDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal sync config", goerr.V(model.SyncConfigIDKey, id))
	}
	return &doc, nil
}

func (r *syncConfigRepository) Create(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error) {
	now := time.Now().UTC()
	doc := syncConfigToDocument(cfg)
	if doc.ID == "" {
		doc.ID = string(model.NewSyncConfigID())
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create sync config", goerr.V(model.SyncConfigIDKey, doc.ID))
	}

	return syncConfigToModel(doc), nil
}

func (r *syncConfigRepository) Get(ctx context.Context, id model.SyncConfigID) (*model.SyncConfig, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return syncConfigToModel(doc), nil
}

func (r *syncConfigRepository) List(ctx context.Context) ([]*model.SyncConfig, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var configs []*model.SyncConfig
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sync configs")
		}

		var doc syncConfigDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal sync config", goerr.V(model.SyncConfigIDKey, snap.Ref.ID))
		}
		configs = append(configs, syncConfigToModel(&doc))
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
	var updated *syncConfigDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.collection().Doc(string(cfg.ID))
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, cfg.ID))
			}
			return goerr.Wrap(err, "failed to get sync config", goerr.V(model.SyncConfigIDKey, cfg.ID))
		}

		var existing syncConfigDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal sync config", goerr.V(model.SyncConfigIDKey, cfg.ID))
		}

		updated = syncConfigToDocument(cfg)
		updated.CreatedAt = existing.CreatedAt
		updated.LastSyncAt = existing.LastSyncAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update sync config", goerr.V(model.SyncConfigIDKey, cfg.ID))
	}

	return syncConfigToModel(updated), nil
}

func (r *syncConfigRepository) UpdateLastSyncAt(ctx context.Context, id model.SyncConfigID, at time.Time) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "last_sync_at", Value: at.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "sync config not found", goerr.V(model.SyncConfigIDKey, id))
		}
		return goerr.Wrap(err, "failed to update last sync time", goerr.V(model.SyncConfigIDKey, id))
	}
	return nil
}

func (r *syncConfigRepository) Delete(ctx context.Context, id model.SyncConfigID) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete sync config", goerr.V(model.SyncConfigIDKey, id))
	}
	return nil
}
