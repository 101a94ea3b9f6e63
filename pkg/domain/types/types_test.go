package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

func TestFieldType_IsValid(t *testing.T) {
	for _, ft := range types.AllFieldTypes() {
		t.Run(ft.String(), func(t *testing.T) {
			gt.Bool(t, ft.IsValid()).True()
		})
	}

	gt.Array(t, types.AllFieldTypes()).Length(14)
	gt.Bool(t, types.FieldType("select").IsValid()).False()
	gt.Bool(t, types.FieldType("").IsValid()).False()
}

func TestFieldType_IsMultiValued(t *testing.T) {
	gt.Bool(t, types.FieldTypeCollection.IsMultiValued()).True()
	gt.Bool(t, types.FieldTypeTaxonomy.IsMultiValued()).True()
	gt.Bool(t, types.FieldTypeLookup.IsMultiValued()).False()
	gt.Bool(t, types.FieldTypeText.IsMultiValued()).False()
}

func TestRuleType_IsValid(t *testing.T) {
	for _, rt := range types.AllRuleTypes() {
		gt.Bool(t, rt.IsValid()).True()
	}
	gt.Bool(t, types.RuleType("translate").IsValid()).False()
}

func TestSourceKind_IsValid(t *testing.T) {
	tests := []struct {
		kind types.SourceKind
		want bool
	}{
		{types.SourceKindInline, true},
		{types.SourceKindAPI, true},
		{types.SourceKindFile, true},
		{types.SourceKindNotion, true},
		{"ftp", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			gt.Value(t, tt.kind.IsValid()).Equal(tt.want)
		})
	}
}

func TestDestinationKind_IsValid(t *testing.T) {
	for _, k := range types.AllDestinationKinds() {
		gt.Bool(t, k.IsValid()).True()
	}
	gt.Bool(t, types.DestinationKind("news").IsValid()).False()
}

func TestTrigger_IsValid(t *testing.T) {
	gt.Bool(t, types.TriggerManual.IsValid()).True()
	gt.Bool(t, types.TriggerAuto.IsValid()).True()
	gt.Bool(t, types.TriggerSchedule.IsValid()).True()
	gt.Bool(t, types.Trigger("webhook").IsValid()).False()
}
