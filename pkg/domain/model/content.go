package model

import (
	"time"

	"github.com/google/uuid"
)

// NewContentRecordID generates an identifier for a new destination record
func NewContentRecordID() string {
	return uuid.New().String()
}

// ContentRecord is a record in the destination content store
type ContentRecord struct {
	ID         string
	Collection string
	Fields     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
