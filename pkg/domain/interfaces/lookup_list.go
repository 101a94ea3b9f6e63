package interfaces

import (
	"context"

	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// LookupListRepository holds the named lists used by lookup transform rules
type LookupListRepository interface {
	// Put creates or replaces a list
	Put(ctx context.Context, list *model.LookupList) error

	// GetItem retrieves one item of a list. Missing list or item returns ErrNotFound.
	GetItem(ctx context.Context, listName, itemID string) (map[string]any, error)
}
