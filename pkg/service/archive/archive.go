// Package archive writes sync history entries to Cloud Storage so they are
// retained beyond the bounded history log.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// Writer opens an object for writing
type Writer interface {
	NewWriter(ctx context.Context, bucket, object string) io.WriteCloser
}

type gcsWriter struct {
	client *storage.Client
}

func (g *gcsWriter) NewWriter(ctx context.Context, bucket, object string) io.WriteCloser {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

// Archiver stores history entries as JSON objects
type Archiver struct {
	writer Writer
	client *storage.Client
	bucket string
	prefix string
}

// Option configures an Archiver
type Option func(*Archiver)

// WithPrefix sets the object name prefix
func WithPrefix(prefix string) Option {
	return func(a *Archiver) {
		a.prefix = prefix
	}
}

// WithWriter replaces the storage writer
func WithWriter(w Writer) Option {
	return func(a *Archiver) {
		a.writer = w
	}
}

// New creates an Archiver writing into bucket. A Cloud Storage client is
// created unless WithWriter is given.
func New(ctx context.Context, bucket string, opts ...Option) (*Archiver, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required")
	}

	a := &Archiver{bucket: bucket}
	for _, opt := range opts {
		opt(a)
	}

	if a.writer == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
		}
		a.client = client
		a.writer = &gcsWriter{client: client}
	}

	return a, nil
}

// Close releases the Cloud Storage client
func (a *Archiver) Close() error {
	if a.client == nil {
		return nil
	}
	if err := a.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Cloud Storage client")
	}
	return nil
}

type syncErrorRecord struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type fieldChangeRecord struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

type entryRecord struct {
	ID               string              `json:"id"`
	ConfigID         string              `json:"config_id"`
	Trigger          string              `json:"trigger"`
	Timestamp        time.Time           `json:"timestamp"`
	DurationMS       int64               `json:"duration_ms"`
	SourceDigest     string              `json:"source_digest,omitempty"`
	Success          bool                `json:"success"`
	RecordsProcessed int                 `json:"records_processed"`
	RecordsSuccess   int                 `json:"records_success"`
	RecordsFailed    int                 `json:"records_failed"`
	Errors           []syncErrorRecord   `json:"errors"`
	Changes          []fieldChangeRecord `json:"changes"`
	RecordIDs        []string            `json:"record_ids"`
}

func toRecord(entry *model.HistoryEntry) *entryRecord {
	r := entry.Result
	rec := &entryRecord{
		ID:               string(entry.ID),
		ConfigID:         entry.ConfigID.String(),
		Trigger:          entry.Trigger.String(),
		Timestamp:        entry.Timestamp.UTC(),
		DurationMS:       entry.Duration.Milliseconds(),
		SourceDigest:     entry.SourceDigest,
		Success:          r.Success,
		RecordsProcessed: r.RecordsProcessed,
		RecordsSuccess:   r.RecordsSuccess,
		RecordsFailed:    r.RecordsFailed,
		Errors:           make([]syncErrorRecord, 0, len(r.Errors)),
		Changes:          make([]fieldChangeRecord, 0, len(r.Changes)),
		RecordIDs:        r.RecordIDs,
	}
	for _, e := range r.Errors {
		rec.Errors = append(rec.Errors, syncErrorRecord{Field: e.Field, Message: e.Message})
	}
	for _, c := range r.Changes {
		rec.Changes = append(rec.Changes, fieldChangeRecord{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue})
	}
	return rec
}

// ObjectName returns the object name of entry, grouped by config and day
func (a *Archiver) ObjectName(entry *model.HistoryEntry) string {
	ts := entry.Timestamp.UTC()
	return path.Join(a.prefix, entry.ConfigID.String(), ts.Format("2006/01/02"),
		fmt.Sprintf("%s_%s.json", ts.Format("150405.000"), entry.ID))
}

// Archive writes entry as a JSON object
func (a *Archiver) Archive(ctx context.Context, entry *model.HistoryEntry) error {
	object := a.ObjectName(entry)
	w := a.writer.NewWriter(ctx, a.bucket, object)

	if err := json.NewEncoder(w).Encode(toRecord(entry)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode history entry",
			goerr.V("bucket", a.bucket), goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to write history entry",
			goerr.V("bucket", a.bucket), goerr.V("object", object))
	}
	return nil
}
