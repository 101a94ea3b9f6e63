package schema_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/service/schema"
)

func ptr[T any](v T) *T {
	return &v
}

func TestValidateFieldValue(t *testing.T) {
	count := &model.FieldSchema{
		InternalName: "count",
		Type:         types.FieldTypeNumber,
		Validation:   &model.FieldValidation{Min: ptr(1.0), Max: ptr(10.0)},
	}

	testCases := []struct {
		name    string
		value   any
		field   *model.FieldSchema
		valid   bool
		message string
	}{
		{name: "number within range", value: 10.0, field: count, valid: true},
		{name: "number above max", value: 11.0, field: count, message: "value must be at most 10"},
		{name: "number below min", value: 0.5, field: count, message: "value must be at least 1"},
		{name: "number from string", value: "3", field: count, valid: true},
		{name: "not a number", value: "three", field: count, message: "value must be a number"},
		{name: "null on optional field", value: nil, field: &model.FieldSchema{Type: types.FieldTypeText}, valid: true},
		{name: "null on required field", value: nil, field: &model.FieldSchema{Type: types.FieldTypeText, Required: true}, message: "field is required"},
		{
			name:    "null disallowed",
			value:   nil,
			field:   &model.FieldSchema{Type: types.FieldTypeText, Validation: &model.FieldValidation{AllowNull: ptr(false)}},
			message: "null is not allowed",
		},
		{name: "valid email", value: "alice@example.com", field: &model.FieldSchema{Type: types.FieldTypeEmail}, valid: true},
		{name: "invalid email", value: "alice", field: &model.FieldSchema{Type: types.FieldTypeEmail}, message: "invalid email address"},
		{name: "invalid url", value: "ftp://x", field: &model.FieldSchema{Type: types.FieldTypeURL}, message: "invalid URL"},
		{name: "braced guid", value: "{6F9619FF-8B86-D011-B42D-00C04FC964FF}", field: &model.FieldSchema{Type: types.FieldTypeGUID}, valid: true},
		{name: "invalid date", value: "tomorrow", field: &model.FieldSchema{Type: types.FieldTypeDate}, message: "invalid date"},
		{name: "collection envelope", value: map[string]any{"results": []any{}}, field: &model.FieldSchema{Type: types.FieldTypeCollection}, valid: true},
		{name: "collection scalar", value: "a", field: &model.FieldSchema{Type: types.FieldTypeCollection}, message: "value must be a list"},
		{
			name:    "pattern mismatch",
			value:   "abc",
			field:   &model.FieldSchema{Type: types.FieldTypeText, Validation: &model.FieldValidation{Pattern: "^[A-Z]+$"}},
			message: "value does not match pattern ^[A-Z]+$",
		},
		{name: "no schema", value: "anything", field: nil, valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := schema.ValidateFieldValue(tc.value, tc.field)
			gt.Value(t, result.Valid).Equal(tc.valid)
			if !tc.valid {
				gt.Value(t, result.Error).Equal(tc.message)
			}
		})
	}
}

func TestSanitizeData(t *testing.T) {
	fields := map[string]*model.FieldSchema{
		"count": {
			InternalName: "count",
			Type:         types.FieldTypeNumber,
			Validation:   &model.FieldValidation{Max: ptr(10.0)},
		},
		"body":      {InternalName: "body", Type: types.FieldTypeRichText},
		"published": {InternalName: "published", Type: types.FieldTypeBoolean},
	}

	values := map[string]any{
		"count":     11.0,
		"body":      `<p onclick="steal()">Hi</p><script>alert(1)</script><a href="javascript:alert(1)">link</a>`,
		"published": "true",
		"title":     "Hello",
	}

	out, errs := schema.SanitizeData(values, fields)

	gt.Array(t, errs).Equal([]model.SyncError{{Field: "count", Message: "value must be at most 10"}})
	_, hasCount := out["count"]
	gt.Bool(t, hasCount).False()
	gt.Value(t, out["body"]).Equal(`<p>Hi</p><a href="#">link</a>`)
	gt.Value(t, out["published"]).Equal(any(true))
	gt.Value(t, out["title"]).Equal("Hello")
}

func TestStripUnsafeHTML(t *testing.T) {
	gt.Value(t, schema.StripUnsafeHTML("<b>safe</b>")).Equal("<b>safe</b>")
	gt.Value(t, schema.StripUnsafeHTML(`<img src='javascript:x' onerror=alert(1)>`)).Equal(`<img src="#">`)
}
