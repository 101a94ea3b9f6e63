package schema

import (
	"sort"
	"strings"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

// MapJSONToFields infers a schema for every top-level key of doc and
// normalizes its value. Values that cannot be coerced to their inferred type
// are kept as they are.
func MapJSONToFields(doc map[string]any) *model.SchemaMapping {
	mapping := &model.SchemaMapping{
		Fields:      []model.FieldSchema{},
		Values:      make(map[string]any, len(doc)),
		Collections: make(map[string][]any),
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		if key == model.MetadataKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := doc[key]
		meta := MetadataOf(raw)
		ft := InferType(key, raw, meta)

		value, ok := Coerce(raw, ft)
		if !ok {
			value = raw
		}

		mapping.Fields = append(mapping.Fields, model.FieldSchema{
			Name:         FriendlyName(key),
			InternalName: key,
			Type:         ft,
			Metadata:     meta,
		})
		mapping.Values[key] = value

		if items, isList := value.([]any); isList && ft.IsMultiValued() {
			mapping.Collections[key] = items
		}

		if target, ok := relationshipTarget(key, ft); ok {
			mapping.Relationships = append(mapping.Relationships, model.Relationship{
				SourceField:  key,
				TargetEntity: target,
			})
		}
	}

	return mapping
}

func relationshipTarget(key string, ft types.FieldType) (string, bool) {
	if ft != types.FieldTypeLookup || key == "ID" || !strings.HasSuffix(key, "Id") {
		return "", false
	}
	entity := strings.TrimSuffix(key, "Id")
	if entity == "" {
		return "", false
	}
	return entity, true
}
