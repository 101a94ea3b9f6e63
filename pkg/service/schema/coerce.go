package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

const (
	// DateLayout is the normalized representation of date fields
	DateLayout = "2006-01-02"
	// DateTimeLayout is the normalized representation of datetime fields
	DateTimeLayout = time.RFC3339
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Coerce normalizes value to the canonical representation of ft. The second
// return value is false when value cannot be represented as ft.
func Coerce(value any, ft types.FieldType) (any, bool) {
	if value == nil {
		return nil, true
	}

	switch ft {
	case types.FieldTypeNumber:
		f, ok := toFloat(value)
		return f, ok

	case types.FieldTypeBoolean:
		return toBool(value)

	case types.FieldTypeDate:
		t, ok := ParseTime(value)
		if !ok {
			return value, false
		}
		return t.Format(DateLayout), true

	case types.FieldTypeDateTime:
		t, ok := ParseTime(value)
		if !ok {
			return value, false
		}
		return t.UTC().Format(DateTimeLayout), true

	case types.FieldTypeGUID:
		s, ok := value.(string)
		if !ok {
			return value, false
		}
		return strings.ToLower(strings.Trim(strings.TrimSpace(s), "{}")), true

	case types.FieldTypeEmail, types.FieldTypeURL:
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s), true
		}
		return value, false

	case types.FieldTypeCollection:
		items, ok := toCollection(value)
		if !ok {
			return value, false
		}
		return items, true

	case types.FieldTypeTaxonomy:
		items, ok := toCollection(value)
		if !ok {
			return value, false
		}
		terms := make([]any, 0, len(items))
		for _, item := range items {
			terms = append(terms, toTaxonomyTerm(item))
		}
		return terms, true

	default:
		return value, true
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "sim", "y":
			return true, true
		case "false", "0", "no", "nao", "não", "n", "":
			return false, true
		}
		return value, false
	default:
		if f, ok := toFloat(value); ok {
			return f != 0, true
		}
		return value, false
	}
}

// ParseTime parses the date and date-time representations found in source
// documents, including the legacy "/Date(1700000000000)/" form.
func ParseTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if m := odataDate.FindStringSubmatch(s); m != nil {
			ms, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return time.UnixMilli(ms).UTC(), true
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toCollection(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, true
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return results, true
		}
		if isTaxonomyTerm(v) {
			return []any{v}, true
		}
		if _, wrapped := v[model.MetadataKey]; wrapped {
			return []any{}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func toTaxonomyTerm(item any) any {
	switch v := item.(type) {
	case map[string]any:
		term := map[string]any{}
		for _, key := range []string{"Label", "label"} {
			if label, ok := v[key]; ok {
				term["label"] = label
				break
			}
		}
		for _, key := range []string{"TermGuid", "termId", "TermID"} {
			if id, ok := v[key]; ok {
				term["termId"] = id
				break
			}
		}
		if len(term) == 0 {
			return v
		}
		return term
	case string:
		return map[string]any{"label": v}
	default:
		return map[string]any{"label": fmt.Sprint(v)}
	}
}
