package model

import (
	"sort"
	"time"
)

// SyncResult is the immutable outcome of one sync run
type SyncResult struct {
	Success          bool
	Timestamp        time.Time
	RecordsProcessed int
	RecordsSuccess   int
	RecordsFailed    int
	Errors           []SyncError
	Changes          []FieldChange
	RecordIDs        []string
}

// SyncError is a failure attributed to a field, or to GeneralField
type SyncError struct {
	Field   string
	Message string
}

// FieldChange is a single field difference written to the destination
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// ResultRecorder accumulates the outcome of a run. Finish freezes it into a SyncResult.
type ResultRecorder struct {
	timestamp time.Time
	processed int
	success   int
	failed    int
	errors    []SyncError
	changes   []FieldChange
	recordIDs []string
}

// NewResultRecorder starts recording a run that began at ts
func NewResultRecorder(ts time.Time) *ResultRecorder {
	return &ResultRecorder{timestamp: ts}
}

// Processed counts one source record entering the pipeline
func (r *ResultRecorder) Processed() {
	r.processed++
}

// Succeeded records a successfully written record and its changes
func (r *ResultRecorder) Succeeded(recordID string, changes []FieldChange) {
	r.success++
	r.recordIDs = append(r.recordIDs, recordID)
	r.changes = append(r.changes, changes...)
}

// Failed records a failed record with its errors
func (r *ResultRecorder) Failed(errs ...SyncError) {
	r.failed++
	r.errors = append(r.errors, errs...)
}

// Error records an error without counting a failed record
func (r *ResultRecorder) Error(field, message string) {
	r.errors = append(r.errors, SyncError{Field: field, Message: message})
}

// Finish returns the final result. Success means no errors and no failed records.
func (r *ResultRecorder) Finish() *SyncResult {
	result := &SyncResult{
		Success:          r.failed == 0 && len(r.errors) == 0,
		Timestamp:        r.timestamp,
		RecordsProcessed: r.processed,
		RecordsSuccess:   r.success,
		RecordsFailed:    r.failed,
		Errors:           append([]SyncError{}, r.errors...),
		Changes:          append([]FieldChange{}, r.changes...),
		RecordIDs:        append([]string{}, r.recordIDs...),
	}
	return result
}

// SortChanges orders changes by field name
func SortChanges(changes []FieldChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Field < changes[j].Field
	})
}
