package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type contentDocument struct {
	ID        string         `firestore:"id"`
	Fields    map[string]any `firestore:"fields"`
	CreatedAt time.Time      `firestore:"created_at"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

type contentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContentRepository(client *firestore.Client) *contentRepository {
	return &contentRepository{
		client: client,
	}
}

func (r *contentRepository) collection(name string) *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "content_"+name))
}

func contentToModel(collection string, doc *contentDocument) *model.ContentRecord {
	fields := normalizeFields(doc.Fields)
	if fields == nil {
		fields = make(map[string]any)
	}
	return &model.ContentRecord{
		ID:         doc.ID,
		Collection: collection,
		Fields:     fields,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func (r *contentRepository) Get(ctx context.Context, collection, id string) (*model.ContentRecord, error) {
	snap, err := r.collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "content record not found",
				goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get content record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}

	var doc contentDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal content record", goerr.V(model.RecordIDKey, id))
	}
	return contentToModel(collection, &doc), nil
}

func (r *contentRepository) Create(ctx context.Context, collection string, fields map[string]any) (*model.ContentRecord, error) {
	now := time.Now().UTC()
	doc := &contentDocument{
		ID:        model.NewContentRecordID(),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Fields == nil {
		doc.Fields = make(map[string]any)
	}

	if _, err := r.collection(collection).Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create content record", goerr.V(model.CollectionKey, collection))
	}
	return contentToModel(collection, doc), nil
}

func (r *contentRepository) Merge(ctx context.Context, collection, id string, fields map[string]any) (*model.ContentRecord, error) {
	var merged contentDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.collection(collection).Doc(id)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "content record not found",
					goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
			}
			return goerr.Wrap(err, "failed to get content record", goerr.V(model.RecordIDKey, id))
		}

		if err := snap.DataTo(&merged); err != nil {
			return goerr.Wrap(err, "failed to unmarshal content record", goerr.V(model.RecordIDKey, id))
		}
		if merged.Fields == nil {
			merged.Fields = make(map[string]any)
		}
		for k, v := range fields {
			merged.Fields[k] = v
		}
		merged.UpdatedAt = time.Now().UTC()

		return tx.Set(ref, &merged)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to merge content record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}

	return contentToModel(collection, &merged), nil
}
