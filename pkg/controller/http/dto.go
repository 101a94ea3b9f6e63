package http

import (
	"sort"
	"time"

	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
)

type sourceDTO struct {
	Kind     types.SourceKind  `json:"kind"`
	Endpoint string            `json:"endpoint,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Payload  map[string]any    `json:"payload,omitempty"`
	PageID   string            `json:"pageId,omitempty"`
}

type destinationDTO struct {
	Kind     types.DestinationKind `json:"kind"`
	ListName string                `json:"listName,omitempty"`
	RecordID string                `json:"recordId,omitempty"`
}

type transformRuleDTO struct {
	Field  string         `json:"field"`
	Type   types.RuleType `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

type syncConfigRequest struct {
	Name                string             `json:"name"`
	Source              sourceDTO          `json:"source"`
	Destination         destinationDTO     `json:"destination"`
	FieldMappings       map[string]string  `json:"fieldMappings"`
	TransformRules      []transformRuleDTO `json:"transformRules"`
	AutoSync            bool               `json:"autoSync"`
	SyncIntervalMinutes int                `json:"syncIntervalMinutes"`
	// Enabled defaults to true when omitted
	Enabled *bool `json:"enabled"`
}

func (req *syncConfigRequest) toModel(id model.SyncConfigID) *model.SyncConfig {
	cfg := &model.SyncConfig{
		ID:   id,
		Name: req.Name,
		Source: model.SourceDescriptor{
			Kind:     req.Source.Kind,
			Endpoint: req.Source.Endpoint,
			Headers:  req.Source.Headers,
			Payload:  req.Source.Payload,
			PageID:   req.Source.PageID,
		},
		Destination: model.DestinationDescriptor{
			Kind:     req.Destination.Kind,
			ListName: req.Destination.ListName,
			RecordID: req.Destination.RecordID,
		},
		FieldMappings:       req.FieldMappings,
		AutoSync:            req.AutoSync,
		SyncIntervalMinutes: req.SyncIntervalMinutes,
		Enabled:             req.Enabled == nil || *req.Enabled,
	}
	for _, rule := range req.TransformRules {
		cfg.TransformRules = append(cfg.TransformRules, model.TransformRule{
			Field:  rule.Field,
			Type:   rule.Type,
			Params: rule.Params,
		})
	}
	return cfg
}

// sourceResponse lists header names only; values are credentials
type sourceResponse struct {
	Kind        types.SourceKind `json:"kind"`
	Endpoint    string           `json:"endpoint,omitempty"`
	HeaderNames []string         `json:"headerNames,omitempty"`
	Payload     map[string]any   `json:"payload,omitempty"`
	PageID      string           `json:"pageId,omitempty"`
}

type syncConfigResponse struct {
	ID                  model.SyncConfigID `json:"id"`
	Name                string             `json:"name"`
	Source              sourceResponse     `json:"source"`
	Destination         destinationDTO     `json:"destination"`
	FieldMappings       map[string]string  `json:"fieldMappings"`
	TransformRules      []transformRuleDTO `json:"transformRules"`
	AutoSync            bool               `json:"autoSync"`
	SyncIntervalMinutes int                `json:"syncIntervalMinutes"`
	Enabled             bool               `json:"enabled"`
	LastSyncAt          *time.Time         `json:"lastSyncAt"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func toSyncConfigResponse(cfg *model.SyncConfig) *syncConfigResponse {
	resp := &syncConfigResponse{
		ID:   cfg.ID,
		Name: cfg.Name,
		Source: sourceResponse{
			Kind:     cfg.Source.Kind,
			Endpoint: cfg.Source.Endpoint,
			Payload:  cfg.Source.Payload,
			PageID:   cfg.Source.PageID,
		},
		Destination: destinationDTO{
			Kind:     cfg.Destination.Kind,
			ListName: cfg.Destination.ListName,
			RecordID: cfg.Destination.RecordID,
		},
		FieldMappings:       cfg.FieldMappings,
		TransformRules:      []transformRuleDTO{},
		AutoSync:            cfg.AutoSync,
		SyncIntervalMinutes: cfg.SyncIntervalMinutes,
		Enabled:             cfg.Enabled,
		LastSyncAt:          cfg.LastSyncAt,
		CreatedAt:           cfg.CreatedAt,
		UpdatedAt:           cfg.UpdatedAt,
	}
	if resp.FieldMappings == nil {
		resp.FieldMappings = map[string]string{}
	}
	for name := range cfg.Source.Headers {
		resp.Source.HeaderNames = append(resp.Source.HeaderNames, name)
	}
	sort.Strings(resp.Source.HeaderNames)
	for _, rule := range cfg.TransformRules {
		resp.TransformRules = append(resp.TransformRules, transformRuleDTO{
			Field:  rule.Field,
			Type:   rule.Type,
			Params: rule.Params,
		})
	}
	return resp
}

type syncErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type fieldChangeResponse struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

type syncResultResponse struct {
	Success          bool                  `json:"success"`
	Timestamp        time.Time             `json:"timestamp"`
	RecordsProcessed int                   `json:"recordsProcessed"`
	RecordsSuccess   int                   `json:"recordsSuccess"`
	RecordsFailed    int                   `json:"recordsFailed"`
	Errors           []syncErrorResponse   `json:"errors"`
	Changes          []fieldChangeResponse `json:"changes"`
	RecordIDs        []string              `json:"recordIds"`
}

func toSyncResultResponse(result *model.SyncResult) *syncResultResponse {
	resp := &syncResultResponse{
		Success:          result.Success,
		Timestamp:        result.Timestamp,
		RecordsProcessed: result.RecordsProcessed,
		RecordsSuccess:   result.RecordsSuccess,
		RecordsFailed:    result.RecordsFailed,
		Errors:           make([]syncErrorResponse, len(result.Errors)),
		Changes:          make([]fieldChangeResponse, len(result.Changes)),
		RecordIDs:        append([]string{}, result.RecordIDs...),
	}
	for i, e := range result.Errors {
		resp.Errors[i] = syncErrorResponse{Field: e.Field, Message: e.Message}
	}
	for i, c := range result.Changes {
		resp.Changes[i] = fieldChangeResponse{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue}
	}
	return resp
}

type historyEntryResponse struct {
	ID           model.HistoryEntryID `json:"id"`
	ConfigID     model.SyncConfigID   `json:"configId"`
	Trigger      types.Trigger        `json:"trigger"`
	Timestamp    time.Time            `json:"timestamp"`
	DurationMS   int64                `json:"durationMs"`
	SourceDigest string               `json:"sourceDigest,omitempty"`
	Result       *syncResultResponse  `json:"result"`
}

func toHistoryResponse(entries []*model.HistoryEntry) []*historyEntryResponse {
	resp := make([]*historyEntryResponse, len(entries))
	for i, entry := range entries {
		resp[i] = &historyEntryResponse{
			ID:           entry.ID,
			ConfigID:     entry.ConfigID,
			Trigger:      entry.Trigger,
			Timestamp:    entry.Timestamp,
			DurationMS:   entry.Duration.Milliseconds(),
			SourceDigest: entry.SourceDigest,
			Result:       toSyncResultResponse(&entry.Result),
		}
	}
	return resp
}

type fieldSchemaResponse struct {
	Name         string          `json:"name"`
	InternalName string          `json:"internalName"`
	Type         types.FieldType `json:"type"`
	Required     bool            `json:"required"`
	MetadataType string          `json:"metadataType,omitempty"`
}

type relationshipResponse struct {
	SourceField  string `json:"sourceField"`
	TargetEntity string `json:"targetEntity"`
}

type schemaPreviewResponse struct {
	Fields        []fieldSchemaResponse  `json:"fields"`
	Values        map[string]any         `json:"values"`
	Collections   map[string][]any       `json:"collections"`
	Relationships []relationshipResponse `json:"relationships"`
}

func toSchemaPreviewResponse(mapping *model.SchemaMapping) *schemaPreviewResponse {
	resp := &schemaPreviewResponse{
		Fields:        make([]fieldSchemaResponse, len(mapping.Fields)),
		Values:        mapping.Values,
		Collections:   mapping.Collections,
		Relationships: make([]relationshipResponse, len(mapping.Relationships)),
	}
	for i, f := range mapping.Fields {
		resp.Fields[i] = fieldSchemaResponse{
			Name:         f.Name,
			InternalName: f.InternalName,
			Type:         f.Type,
			Required:     f.Required,
		}
		if f.Metadata != nil {
			resp.Fields[i].MetadataType = f.Metadata.TypeName
		}
	}
	for i, rel := range mapping.Relationships {
		resp.Relationships[i] = relationshipResponse{SourceField: rel.SourceField, TargetEntity: rel.TargetEntity}
	}
	return resp
}

type lookupListRequest struct {
	Items map[string]map[string]any `json:"items"`
}
