// Package mongodb provides a destination content store backed by MongoDB.
// It only implements interfaces.ContentRepository; configurations, history
// and lookup lists stay in the primary repository.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the requested record does not exist
var ErrNotFound = interfaces.ErrNotFound

type contentDocument struct {
	ID        string         `bson:"_id"`
	Fields    map[string]any `bson:"fields"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// ContentRepository stores each destination collection as a MongoDB collection
type ContentRepository struct {
	client           *mongo.Client
	database         *mongo.Database
	collectionPrefix string
}

var _ interfaces.ContentRepository = &ContentRepository{}

type Option func(*ContentRepository)

// WithCollectionPrefix prefixes every collection name
func WithCollectionPrefix(prefix string) Option {
	return func(r *ContentRepository) {
		r.collectionPrefix = prefix
	}
}

// New connects to MongoDB and verifies the connection
func New(ctx context.Context, uri, databaseName string, opts ...Option) (*ContentRepository, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(30 * time.Second).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to MongoDB", goerr.V("database", databaseName))
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, goerr.Wrap(err, "failed to ping MongoDB", goerr.V("database", databaseName))
	}

	r := &ContentRepository{
		client:   client,
		database: client.Database(databaseName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close disconnects the client
func (r *ContentRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		return goerr.Wrap(err, "failed to disconnect MongoDB")
	}
	return nil
}

func (r *ContentRepository) collection(name string) *mongo.Collection {
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.database.Collection(name)
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

func (r *ContentRepository) Get(ctx context.Context, collection, id string) (*model.ContentRecord, error) {
	var doc contentDocument
	if err := r.collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(ErrNotFound, "content record not found",
				goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get content record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}
	return contentToModel(collection, &doc), nil
}

func (r *ContentRepository) Create(ctx context.Context, collection string, fields map[string]any) (*model.ContentRecord, error) {
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

	if _, err := r.collection(collection).InsertOne(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create content record", goerr.V(model.CollectionKey, collection))
	}
	return contentToModel(collection, doc), nil
}

func (r *ContentRepository) Merge(ctx context.Context, collection, id string, fields map[string]any) (*model.ContentRecord, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set["fields."+k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc contentDocument
	err := r.collection(collection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(ErrNotFound, "content record not found",
				goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to merge content record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, id))
	}
	return contentToModel(collection, &doc), nil
}

// normalizeValue converts BSON decoded values to the shapes produced by encoding/json
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case primitive.A:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case primitive.M:
		return normalizeFields(x)
	case map[string]any:
		return normalizeFields(x)
	case primitive.D:
		return normalizeFields(x.Map())
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339)
	default:
		return v
	}
}

func normalizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalizeValue(v)
	}
	return out
}
