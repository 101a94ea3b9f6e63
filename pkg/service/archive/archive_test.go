package archive_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/service/archive"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type memoryWriter struct {
	objects map[string]*bufferCloser
}

func (m *memoryWriter) NewWriter(ctx context.Context, bucket, object string) io.WriteCloser {
	buf := &bufferCloser{}
	m.objects[bucket+"/"+object] = buf
	return buf
}

func newEntry() *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:        "h-1",
		ConfigID:  "cfg-1",
		Trigger:   types.TriggerManual,
		Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Result: model.SyncResult{
			Success:          true,
			RecordsProcessed: 1,
			RecordsSuccess:   1,
			Changes:          []model.FieldChange{{Field: "title", OldValue: "Old", NewValue: "Hello"}},
			RecordIDs:        []string{"rec-1"},
		},
	}
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	w := &memoryWriter{objects: map[string]*bufferCloser{}}

	a, err := archive.New(ctx, "bucket", archive.WithPrefix("history"), archive.WithWriter(w))
	gt.NoError(t, err).Required()

	entry := newEntry()
	gt.Value(t, a.ObjectName(entry)).Equal("history/cfg-1/2026/03/04/050607.000_h-1.json")
	gt.NoError(t, a.Archive(ctx, entry)).Required()

	obj, ok := w.objects["bucket/history/cfg-1/2026/03/04/050607.000_h-1.json"]
	gt.Bool(t, ok).True()
	gt.Bool(t, obj.closed).True()

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(obj.Bytes(), &decoded)).Required()
	gt.Value(t, decoded["config_id"]).Equal("cfg-1")
	gt.Value(t, decoded["duration_ms"]).Equal(1500.0)
	gt.Value(t, decoded["success"]).Equal(true)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := archive.New(context.Background(), "")
	gt.Value(t, err).NotNil()
}

func TestArchive_WithRealBucket(t *testing.T) {
	bucket := os.Getenv("TEST_ARCHIVE_BUCKET")
	if bucket == "" {
		t.Skip("TEST_ARCHIVE_BUCKET not set")
	}

	ctx := context.Background()
	a, err := archive.New(ctx, bucket, archive.WithPrefix("tributary-test"))
	gt.NoError(t, err).Required()
	defer func() {
		gt.NoError(t, a.Close())
	}()

	gt.NoError(t, a.Archive(ctx, newEntry()))
}
