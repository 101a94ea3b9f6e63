package schema

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

const (
	customFieldPrefix = "Campo"
	publishingPrefix  = "Publishing"
)

var (
	guidAliases = []string{"GUID", "UniqueID", "AssetID"}

	customDateMarkers     = []string{"Data", "Date"}
	customEventMarkers    = []string{"Evento", "Event"}
	customBooleanMarkers  = []string{"Exibir", "Visivel", "Ativo", "Destaque", "Flag"}
	customRichTextMarkers = []string{"Resumo", "Corpo", "Texto", "Conteudo", "Summary", "Body"}

	publishingBooleanMarkers = []string{"IsFurlPage", "Canonical"}
)

var (
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	guidPattern     = regexp.MustCompile(`^\{?[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\}?$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlPattern      = regexp.MustCompile(`^https?://[^\s]+$`)
	htmlTagPattern  = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	odataDate       = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)
)

// InferType returns the field type of a source key and value. The first
// matching rule wins: name conventions, custom field prefix, publishing
// prefix, declared metadata, value shape, then text.
func InferType(name string, value any, meta *model.FieldMetadata) types.FieldType {
	if meta == nil {
		meta = MetadataOf(value)
	}

	if t, ok := inferFromName(name, meta); ok {
		return t
	}
	if t, ok := inferFromCustomPrefix(name); ok {
		return t
	}
	if t, ok := inferFromPublishingPrefix(name); ok {
		return t
	}
	if meta != nil {
		switch {
		case meta.Taxonomy:
			return types.FieldTypeTaxonomy
		case meta.Collection:
			return types.FieldTypeCollection
		case meta.Choice:
			return types.FieldTypeChoice
		}
	}
	return inferFromValue(value)
}

func inferFromName(name string, meta *model.FieldMetadata) (types.FieldType, bool) {
	if name == "ID" || strings.HasSuffix(name, "Id") {
		if meta != nil && (meta.Collection || meta.Taxonomy) {
			return types.FieldTypeCollection, true
		}
		return types.FieldTypeLookup, true
	}

	for _, alias := range guidAliases {
		if name == alias {
			return types.FieldTypeGUID, true
		}
	}
	if strings.HasSuffix(name, "GUID") {
		return types.FieldTypeGUID, true
	}

	if strings.Contains(name, "Email") || strings.Contains(name, "EMail") {
		return types.FieldTypeEmail, true
	}
	if strings.Contains(name, "Url") || strings.Contains(name, "URL") || strings.Contains(name, "Link") {
		return types.FieldTypeURL, true
	}

	return "", false
}

func inferFromCustomPrefix(name string) (types.FieldType, bool) {
	if !strings.HasPrefix(name, customFieldPrefix) || len(name) == len(customFieldPrefix) {
		return "", false
	}
	rest := name[len(customFieldPrefix):]

	if containsAny(rest, customDateMarkers) {
		if containsAny(rest, customEventMarkers) {
			return types.FieldTypeDateTime, true
		}
		return types.FieldTypeDate, true
	}
	if containsAny(rest, customBooleanMarkers) {
		return types.FieldTypeBoolean, true
	}
	if containsAny(rest, customRichTextMarkers) {
		return types.FieldTypeRichText, true
	}
	return "", false
}

func inferFromPublishingPrefix(name string) (types.FieldType, bool) {
	if !strings.HasPrefix(name, publishingPrefix) || len(name) == len(publishingPrefix) {
		return "", false
	}
	rest := name[len(publishingPrefix):]

	switch {
	case strings.Contains(rest, "Content"):
		return types.FieldTypeRichText, true
	case containsAny(rest, publishingBooleanMarkers):
		return types.FieldTypeBoolean, true
	case strings.Contains(rest, "Contact"):
		return types.FieldTypeUser, true
	}
	return "", false
}

func inferFromValue(value any) types.FieldType {
	switch v := value.(type) {
	case nil:
		return types.FieldTypeText
	case bool:
		return types.FieldTypeBoolean
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return types.FieldTypeNumber
	case string:
		return inferFromString(v)
	case map[string]any:
		return inferFromObject(v)
	case []any:
		if len(v) > 0 && isTaxonomyTerm(v[0]) {
			return types.FieldTypeTaxonomy
		}
		return types.FieldTypeCollection
	case []string:
		return types.FieldTypeCollection
	default:
		return types.FieldTypeText
	}
}

func inferFromString(s string) types.FieldType {
	switch {
	case dateTimePattern.MatchString(s), odataDate.MatchString(s):
		return types.FieldTypeDateTime
	case datePattern.MatchString(s):
		return types.FieldTypeDate
	case guidPattern.MatchString(s):
		return types.FieldTypeGUID
	case emailPattern.MatchString(s):
		return types.FieldTypeEmail
	case urlPattern.MatchString(s):
		return types.FieldTypeURL
	case htmlTagPattern.MatchString(s):
		return types.FieldTypeRichText
	default:
		return types.FieldTypeText
	}
}

func inferFromObject(obj map[string]any) types.FieldType {
	if meta := MetadataOf(obj); meta != nil {
		if meta.Taxonomy {
			return types.FieldTypeTaxonomy
		}
		if meta.Collection {
			return types.FieldTypeCollection
		}
	}
	if _, ok := obj["results"].([]any); ok {
		return types.FieldTypeCollection
	}
	if isTaxonomyTerm(obj) {
		return types.FieldTypeTaxonomy
	}
	if _, ok := obj["EMail"]; ok {
		return types.FieldTypeUser
	}
	if _, ok := obj["LoginName"]; ok {
		return types.FieldTypeUser
	}
	return types.FieldTypeText
}

// MetadataOf extracts the declared type marker of a value wrapped as
// {"__metadata": {"type": "..."}, ...}. It returns nil for any other value.
func MetadataOf(value any) *model.FieldMetadata {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := obj[model.MetadataKey].(map[string]any)
	if !ok {
		return nil
	}
	typeName, _ := raw["type"].(string)
	if typeName == "" {
		return nil
	}

	return &model.FieldMetadata{
		TypeName:   typeName,
		Collection: strings.HasPrefix(typeName, "Collection("),
		Taxonomy:   strings.Contains(typeName, "Taxonomy"),
		Choice:     strings.Contains(typeName, "Choice"),
	}
}

func isTaxonomyTerm(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, hasLabel := obj["Label"]
	_, hasTerm := obj["TermGuid"]
	return hasLabel && hasTerm
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
