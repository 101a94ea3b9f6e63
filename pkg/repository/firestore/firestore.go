package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

type Firestore struct {
	client      *firestore.Client
	syncConfig  *syncConfigRepository
	syncHistory *syncHistoryRepository
	content     *contentRepository
	lookupList  *lookupListRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. to isolate tests
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.syncConfig.collectionPrefix = prefix
		f.syncHistory.collectionPrefix = prefix
		f.content.collectionPrefix = prefix
		f.lookupList.collectionPrefix = prefix
	}
}

// WithHistoryCapacity sets how many history entries are retained
func WithHistoryCapacity(capacity int) Option {
	return func(f *Firestore) {
		if capacity > 0 {
			f.syncHistory.capacity = capacity
		}
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:      client,
		syncConfig:  newSyncConfigRepository(client),
		syncHistory: newSyncHistoryRepository(client, model.DefaultHistoryCapacity),
		content:     newContentRepository(client),
		lookupList:  newLookupListRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) SyncConfig() interfaces.SyncConfigRepository {
	return f.syncConfig
}

func (f *Firestore) SyncHistory() interfaces.SyncHistoryRepository {
	return f.syncHistory
}

func (f *Firestore) Content() interfaces.ContentRepository {
	return f.content
}

func (f *Firestore) LookupList() interfaces.LookupListRepository {
	return f.lookupList
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

// Collection names before prefixing
const (
	SyncConfigCollection  = "sync_configs"
	SyncHistoryCollection = "sync_history"
	LookupListCollection  = "lookup_lists"
)

// CollectionName applies the collection prefix to name
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
