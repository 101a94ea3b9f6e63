package interfaces

import (
	"context"

	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// ContentRepository is the destination content store written by sync runs
type ContentRepository interface {
	// Get retrieves a record from a collection
	Get(ctx context.Context, collection, id string) (*model.ContentRecord, error)

	// Create stores a new record with the given fields
	Create(ctx context.Context, collection string, fields map[string]any) (*model.ContentRecord, error)

	// Merge overwrites the given fields of an existing record and keeps the others
	Merge(ctx context.Context, collection, id string, fields map[string]any) (*model.ContentRecord, error)
}
