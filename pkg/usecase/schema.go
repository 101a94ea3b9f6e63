package usecase

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/service/schema"
)

// SchemaUseCase exposes schema inference to operators before they write mappings
type SchemaUseCase struct{}

func NewSchemaUseCase() *SchemaUseCase {
	return &SchemaUseCase{}
}

// Preview infers the schema of a raw JSON document. For an array, the first
// element is used.
func (uc *SchemaUseCase) Preview(ctx context.Context, raw []byte) (*model.SchemaMapping, error) {
	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return schema.MapJSONToFields(map[string]any{}), nil
	}
	return schema.MapJSONToFields(docs[0]), nil
}

// decodeDocuments parses a source body into one document per record
func decodeDocuments(raw []byte) ([]map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidSourceDocument, "failed to parse source document", goerr.V("error", err.Error()))
	}

	switch v := decoded.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		docs := make([]map[string]any, 0, len(v))
		for i, item := range v {
			doc, ok := item.(map[string]any)
			if !ok {
				return nil, goerr.Wrap(model.ErrInvalidSourceDocument, "array element is not an object", goerr.V("index", i))
			}
			docs = append(docs, doc)
		}
		return docs, nil
	default:
		return nil, goerr.Wrap(model.ErrInvalidSourceDocument, "unexpected JSON value")
	}
}
