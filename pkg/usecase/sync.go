package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/service/fetcher"
	"github.com/secmon-lab/tributary/pkg/service/notion"
	"github.com/secmon-lab/tributary/pkg/service/schema"
	"github.com/secmon-lab/tributary/pkg/service/transform"
	"github.com/secmon-lab/tributary/pkg/utils/async"
	"github.com/secmon-lab/tributary/pkg/utils/errutil"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

// SyncUseCase executes sync runs and reads their history
type SyncUseCase struct {
	repo     interfaces.Repository
	content  interfaces.ContentRepository
	fetcher  fetcher.Service
	notion   notion.Service
	pipeline *transform.Pipeline
	notifier Notifier
	archiver HistoryArchiver
	now      func() time.Time

	locks sync.Map // model.SyncConfigID -> *sync.Mutex
}

type sourceDocument struct {
	docs   []map[string]any
	digest string
}

func (uc *SyncUseCase) lock(id model.SyncConfigID) func() {
	v, _ := uc.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forget drops the run lock of a deleted configuration
func (uc *SyncUseCase) forget(id model.SyncConfigID) {
	uc.locks.Delete(id)
}

// Sync runs the configuration once and returns its result. It never returns
// nil and never panics; every failure is reported inside the result. Exactly
// one history entry is appended per call. Runs of the same configuration are
// serialized. Cancellation of ctx does not interrupt a started run.
func (uc *SyncUseCase) Sync(ctx context.Context, id model.SyncConfigID, trigger types.Trigger) *model.SyncResult {
	ctx = context.WithoutCancel(ctx)

	unlock := uc.lock(id)
	defer unlock()

	ctx = logging.With(ctx, logging.From(ctx).With(
		model.SyncConfigIDKey, id,
		TriggerKey, trigger,
	))

	start := uc.now()
	rec := model.NewResultRecorder(start)

	cfg, digest := uc.run(ctx, id, rec)
	result := rec.Finish()

	entry := &model.HistoryEntry{
		ID:           model.NewHistoryEntryID(),
		ConfigID:     id,
		Trigger:      trigger,
		Timestamp:    start,
		Duration:     uc.now().Sub(start),
		SourceDigest: digest,
		Result:       *result,
	}

	if result.Success {
		if err := uc.repo.SyncConfig().UpdateLastSyncAt(ctx, id, start); err != nil {
			_ = errutil.Handle(ctx, err, "failed to record last sync time")
		}
	}

	if err := uc.repo.SyncHistory().Append(ctx, entry); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to append sync history", goerr.V(HistoryIDKey, entry.ID)),
			"failed to append sync history")
	}

	uc.afterRun(ctx, cfg, entry)

	logging.From(ctx).Info("sync finished",
		"success", result.Success,
		"processed", result.RecordsProcessed,
		"succeeded", result.RecordsSuccess,
		"failed", result.RecordsFailed,
		"duration", entry.Duration,
	)

	return result
}

// afterRun archives the entry and notifies failures. Neither affects the run.
func (uc *SyncUseCase) afterRun(ctx context.Context, cfg *model.SyncConfig, entry *model.HistoryEntry) {
	if uc.archiver != nil {
		async.Dispatch(ctx, "archive_history", func(ctx context.Context) error {
			return uc.archiver.Archive(ctx, entry)
		})
	}

	if uc.notifier != nil && cfg != nil && !entry.Result.Success {
		async.Dispatch(ctx, "notify_sync_failure", func(ctx context.Context) error {
			return uc.notifier.NotifySyncFailure(ctx, cfg, entry)
		})
	}
}

// run executes the pipeline, recording into rec. The config is returned when it could be loaded.
func (uc *SyncUseCase) run(ctx context.Context, id model.SyncConfigID, rec *model.ResultRecorder) (cfg *model.SyncConfig, digest string) {
	defer func() {
		if r := recover(); r != nil {
			_ = errutil.Handle(ctx, goerr.New("panic in sync run", goerr.V("panic", fmt.Sprint(r))), "sync run panicked")
			rec.Error(model.GeneralField, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	cfg, err := uc.repo.SyncConfig().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			rec.Error(model.GeneralField, "sync configuration not found")
		} else {
			_ = errutil.Handle(ctx, err, "failed to load sync config")
			rec.Error(model.GeneralField, "failed to load sync configuration")
		}
		return nil, ""
	}

	src, err := uc.fetch(ctx, cfg)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch source", "error", err)
		rec.Error(model.GeneralField, err.Error())
		return cfg, ""
	}

	for _, doc := range src.docs {
		rec.Processed()
		if err := uc.syncRecord(ctx, cfg, doc, rec); err != nil {
			logging.From(ctx).Warn("sync aborted", "error", err)
			rec.Failed(model.SyncError{Field: model.GeneralField, Message: err.Error()})
			break
		}
	}

	return cfg, src.digest
}

func (uc *SyncUseCase) fetch(ctx context.Context, cfg *model.SyncConfig) (*sourceDocument, error) {
	var docs []map[string]any

	switch cfg.Source.Kind {
	case types.SourceKindInline:
		if cfg.Source.Payload == nil {
			return nil, goerr.Wrap(model.ErrInvalidSourceDocument, "inline payload is empty")
		}
		docs = []map[string]any{cfg.Source.Payload}

	case types.SourceKindAPI:
		body, err := uc.fetcher.Fetch(ctx, cfg.Source.Endpoint, cfg.Source.Headers)
		if err != nil {
			return nil, err
		}
		docs, err = decodeDocuments(body)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid source document", goerr.V(model.EndpointKey, cfg.Source.Endpoint))
		}

	case types.SourceKindNotion:
		if uc.notion == nil {
			return nil, goerr.Wrap(ErrNotionNotConfigured, "cannot read notion source")
		}
		doc, err := uc.notion.GetPageDocument(ctx, cfg.Source.PageID)
		if err != nil {
			return nil, err
		}
		docs = []map[string]any{doc}

	default:
		return nil, goerr.Wrap(model.ErrSourceKindNotImplemented, "cannot read source",
			goerr.V(model.SourceKindKey, cfg.Source.Kind))
	}

	if len(docs) > 1 && cfg.Destination.RecordID != "" {
		return nil, goerr.Wrap(ErrArraySourceWithRecordID, "cannot sync source",
			goerr.V(model.RecordIDKey, cfg.Destination.RecordID), goerr.V("records", len(docs)))
	}

	return &sourceDocument{docs: docs, digest: digestOf(docs)}, nil
}

// digestOf hashes the canonical JSON form of the documents. encoding/json
// sorts map keys, so equal documents hash equally.
func digestOf(docs []map[string]any) string {
	var v any = docs
	if len(docs) == 1 {
		v = docs[0]
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}

// syncRecord runs one source document through map, transform, validate and
// write. Record-level failures are recorded and nil is returned; a returned
// error aborts the run.
func (uc *SyncUseCase) syncRecord(ctx context.Context, cfg *model.SyncConfig, doc map[string]any, rec *model.ResultRecorder) error {
	mapping := schema.MapJSONToFields(doc)
	transformed := uc.pipeline.Apply(ctx, mapping.Values, cfg.TransformRules)

	values, fields := applyFieldMappings(transformed, mapping, cfg.EffectiveMappings())
	if len(values) == 0 {
		rec.Failed(model.SyncError{Field: model.GeneralField, Message: ErrNoMappedFields.Error()})
		return nil
	}

	var errs []model.SyncError
	for _, key := range sortedKeys(values) {
		if res := schema.ValidateFieldValue(values[key], fields[key]); !res.Valid {
			errs = append(errs, model.SyncError{Field: key, Message: res.Error})
		}
	}
	if len(errs) > 0 {
		rec.Failed(errs...)
		return nil
	}

	sanitized, errs := schema.SanitizeData(values, fields)
	if len(errs) > 0 {
		rec.Failed(errs...)
		return nil
	}

	return uc.write(ctx, cfg, sanitized, rec)
}

func (uc *SyncUseCase) write(ctx context.Context, cfg *model.SyncConfig, values map[string]any, rec *model.ResultRecorder) error {
	collection := cfg.Destination.Collection()

	if cfg.Destination.RecordID == "" {
		created, err := uc.content.Create(ctx, collection, values)
		if err != nil {
			return goerr.Wrap(err, "failed to create destination record", goerr.V(model.CollectionKey, collection))
		}
		rec.Succeeded(created.ID, diffFields(nil, values))
		return nil
	}

	existing, err := uc.content.Get(ctx, collection, cfg.Destination.RecordID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(model.ErrDestinationNotFound, "cannot update destination record",
				goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, cfg.Destination.RecordID))
		}
		return goerr.Wrap(err, "failed to read destination record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, cfg.Destination.RecordID))
	}

	changes := diffFields(existing.Fields, values)
	if _, err := uc.content.Merge(ctx, collection, existing.ID, values); err != nil {
		return goerr.Wrap(err, "failed to update destination record",
			goerr.V(model.CollectionKey, collection), goerr.V(model.RecordIDKey, existing.ID))
	}

	rec.Succeeded(existing.ID, changes)
	return nil
}

// applyFieldMappings keeps only mapped source keys, renamed to their
// destination keys, and re-keys the inferred schema the same way
func applyFieldMappings(values map[string]any, mapping *model.SchemaMapping, mappings map[string]string) (map[string]any, map[string]*model.FieldSchema) {
	out := make(map[string]any, len(mappings))
	fields := make(map[string]*model.FieldSchema, len(mappings))

	for src, dst := range mappings {
		v, ok := values[src]
		if !ok {
			continue
		}
		out[dst] = v
		if f := mapping.FieldByName(src); f != nil {
			field := *f
			fields[dst] = &field
		}
	}
	return out, fields
}

// diffFields lists fields of next that differ from prev, sorted by field name
func diffFields(prev, next map[string]any) []model.FieldChange {
	var changes []model.FieldChange
	for _, key := range sortedKeys(next) {
		old, exists := prev[key]
		if exists && reflect.DeepEqual(old, next[key]) {
			continue
		}
		changes = append(changes, model.FieldChange{Field: key, OldValue: old, NewValue: next[key]})
	}
	model.SortChanges(changes)
	return changes
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetHistory returns history entries newest first. An empty configID lists every config.
func (uc *SyncUseCase) GetHistory(ctx context.Context, configID model.SyncConfigID, limit int) ([]*model.HistoryEntry, error) {
	entries, err := uc.repo.SyncHistory().List(ctx, configID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sync history", goerr.V(model.SyncConfigIDKey, configID))
	}
	return entries, nil
}
