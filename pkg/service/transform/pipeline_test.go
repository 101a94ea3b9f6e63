package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
	"github.com/secmon-lab/tributary/pkg/service/transform"
)

type textTransformerFunc func(ctx context.Context, value, prompt string) (string, error)

func (f textTransformerFunc) TransformText(ctx context.Context, value, prompt string) (string, error) {
	return f(ctx, value, prompt)
}

func rule(field string, ruleType types.RuleType, params map[string]any) model.TransformRule {
	return model.TransformRule{Field: field, Type: ruleType, Params: params}
}

func TestPipelineAppliesRulesInOrder(t *testing.T) {
	p := transform.New()
	out := p.Apply(context.Background(), map[string]any{"x": "hi"}, []model.TransformRule{
		rule("x", types.RuleTypeAppend, map[string]any{"suffix": "!"}),
		rule("x", types.RuleTypeFormat, map[string]any{"format": "uppercase"}),
	})
	gt.Value(t, out["x"]).Equal("HI!")
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	p := transform.New()
	in := map[string]any{"title": "a"}
	out := p.Apply(context.Background(), in, []model.TransformRule{
		rule("title", types.RuleTypeReplace, map[string]any{"value": "b"}),
	})
	gt.Value(t, in["title"]).Equal("a")
	gt.Value(t, out["title"]).Equal("b")
}

func TestPipelineStringRules(t *testing.T) {
	p := transform.New()
	ctx := context.Background()

	testCases := []struct {
		name  string
		value any
		rule  model.TransformRule
		want  any
	}{
		{name: "replace", value: "old", rule: rule("f", types.RuleTypeReplace, map[string]any{"value": "new"}), want: "new"},
		{name: "replace missing field", value: nil, rule: rule("f", types.RuleTypeReplace, map[string]any{"value": 3.0}), want: 3.0},
		{name: "append", value: "a", rule: rule("f", types.RuleTypeAppend, map[string]any{"suffix": "b"}), want: "ab"},
		{name: "append on number", value: 1.0, rule: rule("f", types.RuleTypeAppend, map[string]any{"suffix": "b"}), want: 1.0},
		{name: "prepend", value: "b", rule: rule("f", types.RuleTypePrepend, map[string]any{"prefix": "a"}), want: "ab"},
		{name: "lowercase", value: "ABC", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "lowercase"}), want: "abc"},
		{name: "capitalize", value: "hello world", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "capitalize"}), want: "Hello world"},
		{name: "unknown format", value: "Hi", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "rot13"}), want: "Hi"},
		{name: "date format", value: "2024-01-15T10:30:00Z", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "date"}), want: "2024-01-15"},
		{name: "datetime format", value: "2024-01-15", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "datetime"}), want: "2024-01-15T00:00:00Z"},
		{name: "date format on text", value: "soon", rule: rule("f", types.RuleTypeFormat, map[string]any{"format": "date"}), want: "soon"},
		{name: "unknown rule type", value: "x", rule: rule("f", types.RuleType("rot13"), nil), want: "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := p.Apply(ctx, map[string]any{"f": tc.value}, []model.TransformRule{tc.rule})
			gt.Value(t, out["f"]).Equal(tc.want)
		})
	}
}

func TestPipelineLeavesAbsentFieldsAbsent(t *testing.T) {
	ctx := context.Background()
	p := transform.New(transform.WithTextTransformer(textTransformerFunc(func(ctx context.Context, value, prompt string) (string, error) {
		return value + "!!", nil
	})))

	testCases := []struct {
		name string
		rule model.TransformRule
	}{
		{name: "append", rule: rule("missing", types.RuleTypeAppend, map[string]any{"suffix": "b"})},
		{name: "prepend", rule: rule("missing", types.RuleTypePrepend, map[string]any{"prefix": "a"})},
		{name: "format", rule: rule("missing", types.RuleTypeFormat, map[string]any{"format": "uppercase"})},
		{name: "lookup", rule: rule("missing", types.RuleTypeLookup, map[string]any{"lookupList": "authors", "lookupField": "name"})},
		{name: "ai_transform", rule: rule("missing", types.RuleTypeAITransform, map[string]any{"prompt": "shout"})},
		{name: "unknown rule type", rule: rule("missing", types.RuleType("rot13"), nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := p.Apply(ctx, map[string]any{"title": "a"}, []model.TransformRule{tc.rule})
			_, ok := out["missing"]
			gt.Bool(t, ok).False()
			gt.Value(t, out).Equal(map[string]any{"title": "a"})
		})
	}

	t.Run("replace adds the field", func(t *testing.T) {
		out := p.Apply(ctx, map[string]any{}, []model.TransformRule{
			rule("missing", types.RuleTypeReplace, map[string]any{"value": "set"}),
		})
		gt.Value(t, out["missing"]).Equal("set")
	})
}

func TestPipelineLookup(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.LookupList().Put(ctx, &model.LookupList{
		Name: "authors",
		Items: map[string]map[string]any{
			"7": {"name": "Alice"},
		},
	})).Required()

	lookup := func(list string) model.TransformRule {
		return rule("author", types.RuleTypeLookup, map[string]any{"lookupList": list, "lookupField": "name"})
	}

	t.Run("resolves item field", func(t *testing.T) {
		p := transform.New(transform.WithLookupResolver(repo.LookupList()))
		out := p.Apply(ctx, map[string]any{"author": 7.0}, []model.TransformRule{lookup("authors")})
		gt.Value(t, out["author"]).Equal("Alice")
	})

	t.Run("missing item yields nil", func(t *testing.T) {
		p := transform.New(transform.WithLookupResolver(repo.LookupList()))
		out := p.Apply(ctx, map[string]any{"author": "99"}, []model.TransformRule{lookup("authors")})
		gt.Value(t, out["author"]).Nil()
	})

	t.Run("missing list yields nil", func(t *testing.T) {
		p := transform.New(transform.WithLookupResolver(repo.LookupList()))
		out := p.Apply(ctx, map[string]any{"author": "7"}, []model.TransformRule{lookup("editors")})
		gt.Value(t, out["author"]).Nil()
	})
}

func TestPipelineTextTransform(t *testing.T) {
	ctx := context.Background()
	summarize := rule("body", types.RuleTypeAITransform, map[string]any{"prompt": "shout"})

	t.Run("no delegate passes through", func(t *testing.T) {
		out := transform.New().Apply(ctx, map[string]any{"body": "hi"}, []model.TransformRule{summarize})
		gt.Value(t, out["body"]).Equal("hi")
	})

	t.Run("delegate result is used", func(t *testing.T) {
		var gotPrompt string
		p := transform.New(transform.WithTextTransformer(textTransformerFunc(func(ctx context.Context, value, prompt string) (string, error) {
			gotPrompt = prompt
			return value + "!!", nil
		})))
		out := p.Apply(ctx, map[string]any{"body": "hi"}, []model.TransformRule{summarize})
		gt.Value(t, out["body"]).Equal("hi!!")
		gt.Value(t, gotPrompt).Equal("shout")
	})

	t.Run("failing delegate passes through", func(t *testing.T) {
		p := transform.New(transform.WithTextTransformer(textTransformerFunc(func(ctx context.Context, value, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		})))
		out := p.Apply(ctx, map[string]any{"body": "hi"}, []model.TransformRule{summarize})
		gt.Value(t, out["body"]).Equal("hi")
	})

	t.Run("panicking delegate is isolated", func(t *testing.T) {
		p := transform.New(transform.WithTextTransformer(textTransformerFunc(func(ctx context.Context, value, prompt string) (string, error) {
			panic("boom")
		})))
		out := p.Apply(ctx, map[string]any{"body": "hi"}, []model.TransformRule{
			summarize,
			rule("body", types.RuleTypeAppend, map[string]any{"suffix": "?"}),
		})
		gt.Value(t, out["body"]).Equal("hi?")
	})
}

func TestPipelineExpression(t *testing.T) {
	ctx := context.Background()
	p := transform.New()

	t.Run("evaluates with value and record", func(t *testing.T) {
		out := p.Apply(ctx, map[string]any{"title": "abc", "code": "x1"}, []model.TransformRule{
			rule("title", types.RuleTypeExpression, map[string]any{"expression": `upper(value) + "-" + record.code`}),
		})
		gt.Value(t, out["title"]).Equal("ABC-x1")
	})

	t.Run("broken expression is a no-op", func(t *testing.T) {
		out := p.Apply(ctx, map[string]any{"title": "abc"}, []model.TransformRule{
			rule("title", types.RuleTypeExpression, map[string]any{"expression": "value +"}),
		})
		gt.Value(t, out["title"]).Equal("abc")
	})

	t.Run("compile reports invalid expressions", func(t *testing.T) {
		err := p.Compile([]model.TransformRule{
			rule("title", types.RuleTypeAppend, map[string]any{"suffix": "!"}),
			rule("title", types.RuleTypeExpression, map[string]any{"expression": "value +"}),
		})
		gt.Error(t, err).Is(model.ErrInvalidTransformRule)

		gt.NoError(t, p.Compile([]model.TransformRule{
			rule("title", types.RuleTypeExpression, map[string]any{"expression": "len(value)"}),
		}))
	})
}
