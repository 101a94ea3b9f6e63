package transform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/service/schema"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

// LookupResolver resolves one item of a named list. A missing list or item
// is reported with an error wrapping interfaces.ErrNotFound.
type LookupResolver interface {
	GetItem(ctx context.Context, listName, itemID string) (map[string]any, error)
}

// TextTransformer rewrites a text value following an operator prompt
type TextTransformer interface {
	TransformText(ctx context.Context, value, prompt string) (string, error)
}

// Pipeline applies transform rules to mapped values
type Pipeline struct {
	lookup LookupResolver
	text   TextTransformer

	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLookupResolver sets the resolver used by lookup rules
func WithLookupResolver(r LookupResolver) Option {
	return func(p *Pipeline) {
		p.lookup = r
	}
}

// WithTextTransformer sets the delegate used by ai_transform rules
func WithTextTransformer(t TextTransformer) Option {
	return func(p *Pipeline) {
		p.text = t
	}
}

// New creates a Pipeline
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		programs: make(map[string]*vm.Program),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply runs rules in order over a copy of values and returns the copy.
// A rule that fails, panics or does not apply leaves its field untouched; a
// field absent from values is only added by replace and expression rules.
func (p *Pipeline) Apply(ctx context.Context, values map[string]any, rules []model.TransformRule) map[string]any {
	working := make(map[string]any, len(values))
	for k, v := range values {
		working[k] = v
	}

	for i, rule := range rules {
		next, changed, err := p.applyRule(ctx, working, rule)
		if err != nil {
			logging.From(ctx).Warn("transform rule skipped",
				"index", i,
				"field", rule.Field,
				"type", rule.Type,
				"error", err,
			)
			continue
		}
		if changed {
			working[rule.Field] = next
		}
	}

	return working
}

func (p *Pipeline) applyRule(ctx context.Context, working map[string]any, rule model.TransformRule) (result any, changed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, changed = nil, false
			err = goerr.New("transform rule panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()

	current, present := working[rule.Field]

	switch rule.Type {
	case types.RuleTypeReplace:
		return rule.Params["value"], true, nil

	case types.RuleTypeAppend:
		if s, ok := current.(string); ok {
			return s + rule.Param("suffix"), true, nil
		}
		return nil, false, nil

	case types.RuleTypePrepend:
		if s, ok := current.(string); ok {
			return rule.Param("prefix") + s, true, nil
		}
		return nil, false, nil

	case types.RuleTypeFormat:
		if !present {
			return nil, false, nil
		}
		return applyFormat(current, types.FormatName(rule.Param("format"))), true, nil

	case types.RuleTypeLookup:
		if !present {
			return nil, false, nil
		}
		out, err := p.applyLookup(ctx, current, rule)
		return out, err == nil, err

	case types.RuleTypeAITransform:
		return p.applyTextTransform(ctx, current, rule)

	case types.RuleTypeExpression:
		out, err := p.evaluate(rule.Param("expression"), map[string]any{
			"value":  current,
			"record": working,
		})
		return out, err == nil, err

	default:
		return nil, false, nil
	}
}

func applyFormat(value any, format types.FormatName) any {
	switch format {
	case types.FormatDate, types.FormatDateTime:
		t, ok := schema.ParseTime(value)
		if !ok {
			return value
		}
		if format == types.FormatDate {
			return t.Format(schema.DateLayout)
		}
		return t.UTC().Format(schema.DateTimeLayout)
	}

	s, ok := value.(string)
	if !ok {
		return value
	}

	switch format {
	case types.FormatUppercase:
		return strings.ToUpper(s)
	case types.FormatLowercase:
		return strings.ToLower(s)
	case types.FormatCapitalize:
		if s == "" {
			return s
		}
		runes := []rune(s)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	default:
		return value
	}
}

func (p *Pipeline) applyLookup(ctx context.Context, current any, rule model.TransformRule) (any, error) {
	if p.lookup == nil || current == nil {
		return nil, nil
	}

	item, err := p.lookup.GetItem(ctx, rule.Param("lookupList"), lookupKey(current))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to resolve lookup", goerr.V("list", rule.Param("lookupList")))
	}

	return item[rule.Param("lookupField")], nil
}

func lookupKey(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (p *Pipeline) applyTextTransform(ctx context.Context, current any, rule model.TransformRule) (any, bool, error) {
	s, ok := current.(string)
	if p.text == nil || !ok {
		return nil, false, nil
	}

	out, err := p.text.TransformText(ctx, s, rule.Param("prompt"))
	if err != nil {
		return nil, false, goerr.Wrap(err, "text transform failed")
	}
	return out, true, nil
}

// Compile checks that every expression rule in rules compiles
func (p *Pipeline) Compile(rules []model.TransformRule) error {
	for i, rule := range rules {
		if rule.Type != types.RuleTypeExpression {
			continue
		}
		if _, err := p.program(rule.Param("expression")); err != nil {
			return goerr.Wrap(model.ErrInvalidTransformRule, err.Error(),
				goerr.V(model.RuleIndexKey, i), goerr.V(model.FieldKey, rule.Field))
		}
	}
	return nil
}

func (p *Pipeline) evaluate(code string, env map[string]any) (any, error) {
	program, err := p.program(code)
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate expression", goerr.V("expression", code))
	}
	return out, nil
}

func (p *Pipeline) program(code string) (*vm.Program, error) {
	if strings.TrimSpace(code) == "" {
		return nil, goerr.New("expression is empty")
	}

	p.mu.RLock()
	prog, ok := p.programs[code]
	p.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile expression", goerr.V("expression", code))
	}

	p.mu.Lock()
	p.programs[code] = prog
	p.mu.Unlock()
	return prog, nil
}
