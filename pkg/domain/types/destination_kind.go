package types

// DestinationKind is the kind of content record a sync writes to
type DestinationKind string

const (
	DestinationKindPage       DestinationKind = "page"
	DestinationKindArticle    DestinationKind = "article"
	DestinationKindCustomList DestinationKind = "custom_list"
)

// AllDestinationKinds returns all valid destination kinds
func AllDestinationKinds() []DestinationKind {
	return []DestinationKind{
		DestinationKindPage,
		DestinationKindArticle,
		DestinationKindCustomList,
	}
}

// IsValid checks if the destination kind is valid
func (k DestinationKind) IsValid() bool {
	switch k {
	case DestinationKindPage, DestinationKindArticle, DestinationKindCustomList:
		return true
	default:
		return false
	}
}

func (k DestinationKind) String() string {
	return string(k)
}
