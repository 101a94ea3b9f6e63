package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

// TransformRule is one step of the transformation pipeline
type TransformRule struct {
	Field  string
	Type   types.RuleType
	Params map[string]any
}

// Param returns the string parameter with the given key, or "" when absent or not a string
func (r TransformRule) Param(key string) string {
	if r.Params == nil {
		return ""
	}
	s, _ := r.Params[key].(string)
	return s
}

// Validate checks the rule is well formed
func (r TransformRule) Validate() error {
	if r.Field == "" {
		return goerr.Wrap(ErrInvalidTransformRule, "field is required", goerr.V(RuleTypeKey, r.Type))
	}
	if !r.Type.IsValid() {
		return goerr.Wrap(ErrInvalidTransformRule, "unknown rule type",
			goerr.V(FieldKey, r.Field), goerr.V(RuleTypeKey, r.Type))
	}
	return nil
}
