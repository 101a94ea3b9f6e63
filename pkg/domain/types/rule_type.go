package types

// RuleType identifies a transformation rule
type RuleType string

const (
	RuleTypeReplace     RuleType = "replace"
	RuleTypeAppend      RuleType = "append"
	RuleTypePrepend     RuleType = "prepend"
	RuleTypeFormat      RuleType = "format"
	RuleTypeLookup      RuleType = "lookup"
	RuleTypeAITransform RuleType = "ai_transform"
	RuleTypeExpression  RuleType = "expression"
)

// AllRuleTypes returns all valid rule types
func AllRuleTypes() []RuleType {
	return []RuleType{
		RuleTypeReplace,
		RuleTypeAppend,
		RuleTypePrepend,
		RuleTypeFormat,
		RuleTypeLookup,
		RuleTypeAITransform,
		RuleTypeExpression,
	}
}

// IsValid checks if the rule type is valid
func (t RuleType) IsValid() bool {
	switch t {
	case RuleTypeReplace,
		RuleTypeAppend,
		RuleTypePrepend,
		RuleTypeFormat,
		RuleTypeLookup,
		RuleTypeAITransform,
		RuleTypeExpression:
		return true
	default:
		return false
	}
}

func (t RuleType) String() string {
	return string(t)
}

// FormatName is a named formatting applied by the format rule
type FormatName string

const (
	FormatUppercase  FormatName = "uppercase"
	FormatLowercase  FormatName = "lowercase"
	FormatCapitalize FormatName = "capitalize"
	FormatDate       FormatName = "date"
	FormatDateTime   FormatName = "datetime"
)
