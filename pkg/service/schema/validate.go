package schema

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

func valid() model.ValidationResult {
	return model.ValidationResult{Valid: true}
}

func invalid(format string, args ...any) model.ValidationResult {
	return model.ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// ValidateFieldValue checks value against the type and constraints of field.
// A nil value is valid unless the field is required or explicitly disallows null.
func ValidateFieldValue(value any, field *model.FieldSchema) model.ValidationResult {
	if field == nil {
		return valid()
	}

	if value == nil {
		if field.Required {
			return invalid("field is required")
		}
		if field.Validation != nil && field.Validation.AllowNull != nil && !*field.Validation.AllowNull {
			return invalid("null is not allowed")
		}
		return valid()
	}

	if r := validateType(value, field.Type); !r.Valid {
		return r
	}

	if field.Validation == nil {
		return valid()
	}

	if field.Type == types.FieldTypeNumber {
		n, _ := toFloat(value)
		if lo := field.Validation.Min; lo != nil && n < *lo {
			return invalid("value must be at least %s", formatNumber(*lo))
		}
		if hi := field.Validation.Max; hi != nil && n > *hi {
			return invalid("value must be at most %s", formatNumber(*hi))
		}
	}

	if pattern := field.Validation.Pattern; pattern != "" {
		if s, ok := value.(string); ok {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return invalid("invalid validation pattern: %s", pattern)
			}
			if !re.MatchString(s) {
				return invalid("value does not match pattern %s", pattern)
			}
		}
	}

	return valid()
}

func validateType(value any, ft types.FieldType) model.ValidationResult {
	switch ft {
	case types.FieldTypeEmail:
		if s, ok := value.(string); !ok || !emailPattern.MatchString(s) {
			return invalid("invalid email address")
		}

	case types.FieldTypeURL:
		if s, ok := value.(string); !ok || !urlPattern.MatchString(s) {
			return invalid("invalid URL")
		}

	case types.FieldTypeGUID:
		if s, ok := value.(string); !ok || !guidPattern.MatchString(s) {
			return invalid("invalid GUID")
		}

	case types.FieldTypeDate, types.FieldTypeDateTime:
		if _, ok := ParseTime(value); !ok {
			return invalid("invalid %s", ft)
		}

	case types.FieldTypeNumber:
		if _, ok := toFloat(value); !ok {
			return invalid("value must be a number")
		}

	case types.FieldTypeBoolean:
		if _, ok := toBool(value); !ok {
			return invalid("value must be a boolean")
		}

	case types.FieldTypeCollection, types.FieldTypeTaxonomy:
		if _, ok := toCollection(value); !ok {
			return invalid("value must be a list")
		}
	}

	return valid()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
