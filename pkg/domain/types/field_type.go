package types

// FieldType is the semantic type of a content field
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeNumber     FieldType = "number"
	FieldTypeBoolean    FieldType = "boolean"
	FieldTypeDate       FieldType = "date"
	FieldTypeDateTime   FieldType = "datetime"
	FieldTypeEmail      FieldType = "email"
	FieldTypeURL        FieldType = "url"
	FieldTypeRichText   FieldType = "richtext"
	FieldTypeCollection FieldType = "collection"
	FieldTypeTaxonomy   FieldType = "taxonomy"
	FieldTypeLookup     FieldType = "lookup"
	FieldTypeChoice     FieldType = "choice"
	FieldTypeUser       FieldType = "user"
	FieldTypeGUID       FieldType = "guid"
)

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeNumber,
		FieldTypeBoolean,
		FieldTypeDate,
		FieldTypeDateTime,
		FieldTypeEmail,
		FieldTypeURL,
		FieldTypeRichText,
		FieldTypeCollection,
		FieldTypeTaxonomy,
		FieldTypeLookup,
		FieldTypeChoice,
		FieldTypeUser,
		FieldTypeGUID,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText,
		FieldTypeNumber,
		FieldTypeBoolean,
		FieldTypeDate,
		FieldTypeDateTime,
		FieldTypeEmail,
		FieldTypeURL,
		FieldTypeRichText,
		FieldTypeCollection,
		FieldTypeTaxonomy,
		FieldTypeLookup,
		FieldTypeChoice,
		FieldTypeUser,
		FieldTypeGUID:
		return true
	default:
		return false
	}
}

// IsMultiValued reports whether values of this type are arrays
func (t FieldType) IsMultiValued() bool {
	return t == FieldTypeCollection || t == FieldTypeTaxonomy
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}
