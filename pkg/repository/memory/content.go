package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

type contentRepository struct {
	mu          sync.RWMutex
	collections map[string]map[string]*model.ContentRecord
}

func newContentRepository() *contentRepository {
	return &contentRepository{
		collections: make(map[string]map[string]*model.ContentRecord),
	}
}

func copyContentRecord(rec *model.ContentRecord) *model.ContentRecord {
	copied := *rec
	copied.Fields = copyFields(rec.Fields)
	return &copied
}

func (r *contentRepository) Get(ctx context.Context, collection, id string) (*model.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.collections[collection][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content record not found",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}

	return copyContentRecord(rec), nil
}

func (r *contentRepository) Create(ctx context.Context, collection string, fields map[string]any) (*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	rec := &model.ContentRecord{
		ID:         model.NewContentRecordID(),
		Collection: collection,
		Fields:     copyFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.Fields == nil {
		rec.Fields = make(map[string]any)
	}

	if _, exists := r.collections[collection]; !exists {
		r.collections[collection] = make(map[string]*model.ContentRecord)
	}
	r.collections[collection][rec.ID] = rec

	return copyContentRecord(rec), nil
}

func (r *contentRepository) Merge(ctx context.Context, collection, id string, fields map[string]any) (*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.collections[collection][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content record not found",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}

	for k, v := range fields {
		rec.Fields[k] = copyValue(v)
	}
	rec.UpdatedAt = time.Now().UTC()

	return copyContentRecord(rec), nil
}
