package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type historyEntryDocument struct {
	ID           string             `firestore:"id"`
	ConfigID     string             `firestore:"config_id"`
	Trigger      string             `firestore:"trigger"`
	Timestamp    time.Time          `firestore:"timestamp"`
	DurationMS   int64              `firestore:"duration_ms"`
	SourceDigest string             `firestore:"source_digest"`
	Result       syncResultDocument `firestore:"result"`
}

type syncResultDocument struct {
	Success          bool                  `firestore:"success"`
	Timestamp        time.Time             `firestore:"timestamp"`
	RecordsProcessed int                   `firestore:"records_processed"`
	RecordsSuccess   int                   `firestore:"records_success"`
	RecordsFailed    int                   `firestore:"records_failed"`
	Errors           []syncErrorDocument   `firestore:"errors"`
	Changes          []fieldChangeDocument `firestore:"changes"`
	RecordIDs        []string              `firestore:"record_ids"`
}

type syncErrorDocument struct {
	Field   string `firestore:"field"`
	Message string `firestore:"message"`
}

type fieldChangeDocument struct {
	Field    string `firestore:"field"`
	OldValue any    `firestore:"old_value"`
	NewValue any    `firestore:"new_value"`
}

type syncHistoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
	capacity         int
}

func newSyncHistoryRepository(client *firestore.Client, capacity int) *syncHistoryRepository {
	return &syncHistoryRepository{
		client:   client,
		capacity: capacity,
	}
}

func (r *syncHistoryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, SyncHistoryCollection))
}

func historyEntryToDocument(entry *model.HistoryEntry) *historyEntryDocument {
	doc := &historyEntryDocument{
		ID:           string(entry.ID),
		ConfigID:     string(entry.ConfigID),
		Trigger:      string(entry.Trigger),
		Timestamp:    entry.Timestamp,
		DurationMS:   entry.Duration.Milliseconds(),
		SourceDigest: entry.SourceDigest,
		Result: syncResultDocument{
			Success:          entry.Result.Success,
			Timestamp:        entry.Result.Timestamp,
			RecordsProcessed: entry.Result.RecordsProcessed,
			RecordsSuccess:   entry.Result.RecordsSuccess,
			RecordsFailed:    entry.Result.RecordsFailed,
			RecordIDs:        entry.Result.RecordIDs,
		},
	}
	for _, e := range entry.Result.Errors {
		doc.Result.Errors = append(doc.Result.Errors, syncErrorDocument{Field: e.Field, Message: e.Message})
	}
	for _, c := range entry.Result.Changes {
		doc.Result.Changes = append(doc.Result.Changes, fieldChangeDocument{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue})
	}
	return doc
}

func historyEntryToModel(doc *historyEntryDocument) *model.HistoryEntry {
	entry := &model.HistoryEntry{
		ID:           model.HistoryEntryID(doc.ID),
		ConfigID:     model.SyncConfigID(doc.ConfigID),
		Trigger:      types.Trigger(doc.Trigger),
		Timestamp:    doc.Timestamp,
		Duration:     time.Duration(doc.DurationMS) * time.Millisecond,
		SourceDigest: doc.SourceDigest,
		Result: model.SyncResult{
			Success:          doc.Result.Success,
			Timestamp:        doc.Result.Timestamp,
			RecordsProcessed: doc.Result.RecordsProcessed,
			RecordsSuccess:   doc.Result.RecordsSuccess,
			RecordsFailed:    doc.Result.RecordsFailed,
			RecordIDs:        doc.Result.RecordIDs,
		},
	}
	for _, e := range doc.Result.Errors {
		entry.Result.Errors = append(entry.Result.Errors, model.SyncError{Field: e.Field, Message: e.Message})
	}
	for _, c := range doc.Result.Changes {
		entry.Result.Changes = append(entry.Result.Changes, model.FieldChange{
			Field:    c.Field,
			OldValue: normalizeValue(c.OldValue),
			NewValue: normalizeValue(c.NewValue),
		})
	}
	return entry
}

func (r *syncHistoryRepository) Append(ctx context.Context, entry *model.HistoryEntry) error {
	doc := historyEntryToDocument(entry)
	if doc.ID == "" {
		doc.ID = string(model.NewHistoryEntryID())
	}

	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to append history entry", goerr.V(model.SyncConfigIDKey, doc.ConfigID))
	}

	if err := r.evict(ctx); err != nil {
		return goerr.Wrap(err, "failed to evict old history entries")
	}
	return nil
}

// evict deletes every entry beyond capacity, oldest first
func (r *syncHistoryRepository) evict(ctx context.Context) error {
	iter := r.collection().
		OrderBy("timestamp", firestore.Desc).
		Offset(r.capacity).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate history entries for eviction")
		}
		if _, err := bulkWriter.Delete(snap.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete history entry", goerr.V("id", snap.Ref.ID))
		}
	}

	return nil
}

func (r *syncHistoryRepository) List(ctx context.Context, configID model.SyncConfigID, limit int) ([]*model.HistoryEntry, error) {
	query := r.collection().Query
	if configID != "" {
		query = query.Where("config_id", "==", string(configID))
	}
	query = query.OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var entries []*model.HistoryEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history entries", goerr.V(model.SyncConfigIDKey, configID))
		}

		var doc historyEntryDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal history entry", goerr.V("id", snap.Ref.ID))
		}
		entries = append(entries, historyEntryToModel(&doc))
	}

	return entries, nil
}
