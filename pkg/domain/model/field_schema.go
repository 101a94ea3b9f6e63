package model

import "github.com/secmon-lab/tributary/pkg/domain/types"

// MetadataKey is the reserved key carrying a type marker on source objects,
// e.g. {"__metadata": {"type": "Collection(Edm.String)"}, "results": [...]}
const MetadataKey = "__metadata"

// FieldSchema describes one field inferred from a source document
type FieldSchema struct {
	// Name is the human friendly label
	Name string
	// InternalName is the original key in the source document
	InternalName string
	Type         types.FieldType
	Required     bool
	DefaultValue any
	Validation   *FieldValidation
	Metadata     *FieldMetadata
}

// FieldValidation holds optional constraints checked by the validator
type FieldValidation struct {
	Min       *float64
	Max       *float64
	Pattern   string
	AllowNull *bool
}

// FieldMetadata is the type marker declared by the source for a field
type FieldMetadata struct {
	TypeName   string
	Collection bool
	Taxonomy   bool
	Choice     bool
}

// Relationship is a hint that a lookup field references another entity
type Relationship struct {
	SourceField  string
	TargetEntity string
}

// SchemaMapping is the result of mapping a source document onto typed fields
type SchemaMapping struct {
	Fields        []FieldSchema
	Values        map[string]any
	Collections   map[string][]any
	Relationships []Relationship
}

// FieldByName returns the schema of the field with the given internal name
func (m *SchemaMapping) FieldByName(internalName string) *FieldSchema {
	for i := range m.Fields {
		if m.Fields[i].InternalName == internalName {
			return &m.Fields[i]
		}
	}
	return nil
}

// ValidationResult is the outcome of validating a single field value
type ValidationResult struct {
	Valid bool
	Error string
}
