package orchestrator

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/visibility"
)

// applyVisibility removes fields whose visibility rule evaluates false,
// walking nested objects and array item schemas.
func applyVisibility(resource *model.Resource, evaluator visibility.Evaluator, ctx visibility.Context) error {
	if resource == nil || evaluator == nil {
		return nil
	}

	fields, err := visibleFields(resource.Fields, "", evaluator, ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: apply visibility: %w", err)
	}
	resource.Fields = fields
	return nil
}

func visibleFields(fields []model.Field, prefix string, evaluator visibility.Evaluator, ctx visibility.Context) ([]model.Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	result := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		kept, keep, err := visibleField(field, path, evaluator, ctx)
		if err != nil {
			return nil, err
		}
		if keep {
			result = append(result, kept)
		}
	}
	return result, nil
}

func visibleField(field model.Field, path string, evaluator visibility.Evaluator, ctx visibility.Context) (model.Field, bool, error) {
	if rule := visibilityRule(field); rule != "" {
		ok, err := evaluator.Eval(path, rule, ctx)
		if err != nil {
			return field, false, err
		}
		if !ok {
			return field, false, nil
		}
	}

	nested, err := visibleFields(field.Nested, path, evaluator, ctx)
	if err != nil {
		return field, false, err
	}
	field.Nested = nested

	if field.Items != nil {
		item, keep, err := visibleField(*field.Items, path+"[]", evaluator, ctx)
		if err != nil {
			return field, false, err
		}
		if keep {
			field.Items = &item
		} else {
			field.Items = nil
		}
	}

	return field, true, nil
}

func visibilityRule(field model.Field) string {
	candidates := []string{
		field.Metadata["visibilityRule"],
		field.Metadata["admin.visibilityRule"],
		field.UIHints["visibilityRule"],
	}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// visibilityContext derives the evaluation context for a request. Prefill
// values stand in when the caller supplies no explicit value map.
func visibilityContext(req Request) visibility.Context {
	ctx := req.Visibility
	if ctx.Values == nil && len(req.RenderOptions.Values) > 0 {
		ctx.Values = req.RenderOptions.Values
	}
	return ctx
}
