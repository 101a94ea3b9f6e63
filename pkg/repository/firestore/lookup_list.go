package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type lookupListDocument struct {
	Name  string                    `firestore:"name"`
	Items map[string]map[string]any `firestore:"items"`
}

type lookupListRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLookupListRepository(client *firestore.Client) *lookupListRepository {
	return &lookupListRepository{
		client: client,
	}
}

func (r *lookupListRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, LookupListCollection))
}

func (r *lookupListRepository) Put(ctx context.Context, list *model.LookupList) error {
	doc := &lookupListDocument{
		Name:  list.Name,
		Items: list.Items,
	}
	if _, err := r.collection().Doc(list.Name).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put lookup list", goerr.V("list", list.Name))
	}
	return nil
}

func (r *lookupListRepository) GetItem(ctx context.Context, listName, itemID string) (map[string]any, error) {
	snap, err := r.collection().Doc(listName).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "lookup list not found", goerr.V("list", listName))
		}
		return nil, goerr.Wrap(err, "failed to get lookup list", goerr.V("list", listName))
	}

	var doc lookupListDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal lookup list", goerr.V("list", listName))
	}

	item, exists := doc.Items[itemID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "lookup item not found", goerr.V("list", listName), goerr.V("item_id", itemID))
	}
	return normalizeFields(item), nil
}
