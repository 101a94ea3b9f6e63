package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

func validConfig() *model.SyncConfig {
	return &model.SyncConfig{
		ID:   model.NewSyncConfigID(),
		Name: "news feed",
		Source: model.SourceDescriptor{
			Kind:    types.SourceKindInline,
			Payload: map[string]any{"Title": "Hello"},
		},
		Destination: model.DestinationDescriptor{
			Kind: types.DestinationKindPage,
		},
		FieldMappings: map[string]string{"Title": "title"},
	}
}

func TestSyncConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *model.SyncConfig)
		wantErr bool
	}{
		{"valid inline", func(c *model.SyncConfig) {}, false},
		{"inline without payload", func(c *model.SyncConfig) { c.Source.Payload = nil }, true},
		{"empty name", func(c *model.SyncConfig) { c.Name = " " }, true},
		{"unknown source kind", func(c *model.SyncConfig) { c.Source.Kind = "ftp" }, true},
		{"api without endpoint", func(c *model.SyncConfig) { c.Source.Kind = types.SourceKindAPI }, true},
		{"api with endpoint", func(c *model.SyncConfig) {
			c.Source.Kind = types.SourceKindAPI
			c.Source.Endpoint = "https://example.com/feed.json"
		}, false},
		{"notion without page", func(c *model.SyncConfig) { c.Source.Kind = types.SourceKindNotion }, true},
		{"file source is accepted", func(c *model.SyncConfig) { c.Source.Kind = types.SourceKindFile }, false},
		{"unknown destination", func(c *model.SyncConfig) { c.Destination.Kind = "blog" }, true},
		{"custom list without name", func(c *model.SyncConfig) { c.Destination.Kind = types.DestinationKindCustomList }, true},
		{"negative interval", func(c *model.SyncConfig) { c.SyncIntervalMinutes = -1 }, true},
		{"dotted destination field", func(c *model.SyncConfig) { c.FieldMappings["Author"] = "author.name" }, true},
		{"dollar destination field", func(c *model.SyncConfig) { c.FieldMappings["Price"] = "$price" }, true},
		{"dotted source field", func(c *model.SyncConfig) { c.FieldMappings["odata.type"] = "odata_type" }, false},
		{"rule without field", func(c *model.SyncConfig) {
			c.TransformRules = []model.TransformRule{{Type: types.RuleTypeReplace}}
		}, true},
		{"rule with unknown type", func(c *model.SyncConfig) {
			c.TransformRules = []model.TransformRule{{Field: "Title", Type: "translate"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				gt.Bool(t, errors.Is(err, model.ErrInvalidSyncConfig) || errors.Is(err, model.ErrInvalidTransformRule)).True()
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestSyncConfig_Schedulable(t *testing.T) {
	cfg := validConfig()
	gt.Bool(t, cfg.Schedulable()).False()

	cfg.Enabled = true
	cfg.AutoSync = true
	cfg.SyncIntervalMinutes = 15
	gt.Bool(t, cfg.Schedulable()).True()
	gt.Value(t, cfg.SyncInterval()).Equal(15 * time.Minute)

	cfg.SyncIntervalMinutes = 0
	gt.Bool(t, cfg.Schedulable()).False()
}

func TestDestinationDescriptor_Collection(t *testing.T) {
	gt.Value(t, model.DestinationDescriptor{Kind: types.DestinationKindPage}.Collection()).Equal("pages")
	gt.Value(t, model.DestinationDescriptor{Kind: types.DestinationKindArticle}.Collection()).Equal("articles")
	gt.Value(t, model.DestinationDescriptor{Kind: types.DestinationKindCustomList, ListName: "events"}.Collection()).Equal("list_events")
}

func TestSyncConfig_EffectiveMappings(t *testing.T) {
	cfg := validConfig()
	cfg.FieldMappings = map[string]string{
		"Title":        "title",
		"CampoResumo2": "excerpt",
		"Ignored":      "",
	}

	mappings := cfg.EffectiveMappings()
	gt.Value(t, len(mappings)).Equal(2)
	gt.Value(t, mappings["CampoResumo2"]).Equal("excerpt")
	_, ok := mappings["Ignored"]
	gt.Bool(t, ok).False()
}
