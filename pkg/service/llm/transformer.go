package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

const systemPrompt = `You rewrite field values of content records for a publishing system.
Apply the operator instruction to the given value and return only the rewritten value.
Keep the language of the original value unless the instruction says otherwise.
Preserve HTML markup when the value contains it.`

// Transformer rewrites text values with an LLM
type Transformer struct {
	llmClient gollem.LLMClient
}

// New creates a Transformer backed by llmClient
func New(llmClient gollem.LLMClient) (*Transformer, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Transformer{llmClient: llmClient}, nil
}

type transformResponse struct {
	Value string `json:"value"`
}

// TransformText applies prompt to value and returns the rewritten value
func (t *Transformer) TransformText(ctx context.Context, value, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return value, nil
	}

	session, err := t.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(value, prompt)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text")
	}

	var out transformResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &out); err != nil {
		return "", goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	return out.Value, nil
}

func buildUserPrompt(value, prompt string) string {
	var sb strings.Builder
	sb.WriteString("## Instruction\n\n")
	sb.WriteString(prompt)
	sb.WriteString("\n\n## Value\n\n")
	sb.WriteString(value)
	sb.WriteString("\n")
	return sb.String()
}

func responseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "TransformResponse",
		Description: "The rewritten field value",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"value": {
				Type:        gollem.TypeString,
				Description: "The value after applying the instruction",
				Required:    true,
			},
		},
	}
}
