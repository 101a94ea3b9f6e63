package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

type lookupListRepository struct {
	mu    sync.RWMutex
	lists map[string]map[string]map[string]any
}

func newLookupListRepository() *lookupListRepository {
	return &lookupListRepository{
		lists: make(map[string]map[string]map[string]any),
	}
}

func (r *lookupListRepository) Put(ctx context.Context, list *model.LookupList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make(map[string]map[string]any, len(list.Items))
	for id, item := range list.Items {
		items[id] = copyFields(item)
	}
	r.lists[list.Name] = items
	return nil
}

func (r *lookupListRepository) GetItem(ctx context.Context, listName, itemID string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, exists := r.lists[listName]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "lookup list not found", goerr.V("list", listName))
	}
	item, exists := list[itemID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "lookup item not found", goerr.V("list", listName), goerr.V("item_id", itemID))
	}

	return copyFields(item), nil
}
