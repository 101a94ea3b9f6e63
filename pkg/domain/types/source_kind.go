package types

// SourceKind describes where a sync run reads its source document from
type SourceKind string

const (
	// SourceKindInline uses the payload stored on the configuration
	SourceKindInline SourceKind = "inline"
	// SourceKindAPI fetches the document with an HTTP GET
	SourceKindAPI SourceKind = "api"
	// SourceKindFile is reserved and not implemented
	SourceKindFile SourceKind = "file"
	// SourceKindNotion reads the properties and body of a Notion page
	SourceKindNotion SourceKind = "notion"
)

// AllSourceKinds returns all valid source kinds
func AllSourceKinds() []SourceKind {
	return []SourceKind{
		SourceKindInline,
		SourceKindAPI,
		SourceKindFile,
		SourceKindNotion,
	}
}

// IsValid checks if the source kind is valid
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindInline, SourceKindAPI, SourceKindFile, SourceKindNotion:
		return true
	default:
		return false
	}
}

func (k SourceKind) String() string {
	return string(k)
}
