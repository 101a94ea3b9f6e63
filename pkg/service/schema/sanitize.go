package schema

import (
	"regexp"
	"sort"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

var (
	scriptBlockPattern  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptOpenPattern   = regexp.MustCompile(`(?i)<script\b[^>]*>`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsURLPattern        = regexp.MustCompile(`(?i)(href|src|action)\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s>]*)`)
)

// SanitizeData validates every value that has a schema and returns the
// normalized values. Fields failing validation are dropped and reported.
// Values without a schema pass through unchanged.
func SanitizeData(values map[string]any, fields map[string]*model.FieldSchema) (map[string]any, []model.SyncError) {
	out := make(map[string]any, len(values))
	var errs []model.SyncError

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values[key]
		field, ok := fields[key]
		if !ok || field == nil {
			out[key] = value
			continue
		}

		if r := ValidateFieldValue(value, field); !r.Valid {
			errs = append(errs, model.SyncError{Field: key, Message: r.Error})
			continue
		}

		if coerced, ok := Coerce(value, field.Type); ok {
			value = coerced
		}
		if field.Type == types.FieldTypeRichText {
			if s, ok := value.(string); ok {
				value = StripUnsafeHTML(s)
			}
		}
		out[key] = value
	}

	return out, errs
}

// StripUnsafeHTML removes script elements, inline event handlers and
// javascript: URLs. It is not a general purpose HTML sanitizer.
func StripUnsafeHTML(s string) string {
	s = scriptBlockPattern.ReplaceAllString(s, "")
	s = scriptOpenPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = jsURLPattern.ReplaceAllString(s, `$1="#"`)
	return s
}
