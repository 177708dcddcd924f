// Package tui drives terminal editing sessions for admin resources. Every
// field becomes an interactive prompt behind a swappable driver: geometry
// fields accept WKT, EWKT, or GeoJSON payloads with parse feedback before the
// prompt closes, and the collected row serialises as JSON, a form-encoded
// body, or a readable text summary.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
)

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a terminal renderer. Prompts go through survey unless
// WithPromptDriver scripts them.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver()
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render walks the resource's fields prompting for values. Prefilled values
// in options.Values become prompt defaults, submission errors in
// options.Errors are announced before their field re-prompts, and the
// identifier column passes through without prompting.
func (r *Renderer) Render(ctx context.Context, resource model.Resource, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is required")
	}

	state := NewState(options.Values, options.Errors)
	for _, field := range resource.Fields {
		if field.Name != "" && field.Name == resource.IDField {
			continue
		}
		if err := r.promptField(ctx, field, field.Name, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, path string, state *State) error {
	for _, message := range state.ErrorsFor(path) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+path+": "+message); err != nil {
			return err
		}
	}

	switch {
	case field.IsGeometry():
		return r.promptGeometry(ctx, field, path, state)
	case field.Type == model.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, path, state)
	case field.Type == model.FieldTypeInteger, field.Type == model.FieldTypeNumber:
		return r.promptNumber(ctx, field, path, state)
	case field.Type == model.FieldTypeArray:
		return r.promptArray(ctx, field, path, state)
	case field.Type == model.FieldTypeObject:
		return r.promptObject(ctx, field, path, state)
	case len(field.Enum) > 0:
		return r.promptEnum(ctx, field, path, state)
	default:
		return r.promptString(ctx, field, path, state)
	}
}

// promptGeometry collects a spatial payload through the multi-line prompt.
// WKT, EWKT, and GeoJSON are all accepted; payloads without their own SRID
// assume the field's declared reference. The parsed value is checked against
// the declared geometry kind and normalised to EWKT before storage so every
// downstream consumer sees one format.
func (r *Renderer) promptGeometry(ctx context.Context, field model.Field, path string, state *State) error {
	label := displayLabel(field)
	help := displayHelp(field)
	if help == "" {
		help = "WKT, EWKT (SRID=n;...), or GeoJSON geometry"
	}
	rules := fieldRules(field)
	srid := declaredSRID(field)
	kind := strings.TrimSpace(field.Metadata[model.MetadataGeometryKind])

	validate := func(input string) error {
		if strings.TrimSpace(input) == "" {
			if rules.required {
				return errors.New("required")
			}
			return nil
		}
		value, err := geometry.Parse(input, srid)
		if err != nil {
			return err
		}
		return checkGeometryKind(value, kind)
	}

	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   geometryDefault(state, path),
			Help:      help,
			Validator: validate,
		})
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(response)
		if trimmed == "" {
			if rules.required {
				r.invalid(ctx, path, errors.New("required"))
				continue
			}
			return state.SetValue(path, nil)
		}

		value, err := geometry.Parse(trimmed, srid)
		if err == nil {
			err = checkGeometryKind(value, kind)
		}
		if err != nil {
			r.invalid(ctx, path, err)
			continue
		}

		encoded, err := geometry.EncodeEWKT(value)
		if err != nil {
			return fmt.Errorf("tui: field %s: %w", path, err)
		}
		return state.SetValue(path, encoded)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, path string, state *State) error {
	label := displayLabel(field)
	help := displayHelp(field)
	rules := fieldRules(field)
	defaultVal := stringDefault(state, path, field.Default)

	secret := field.Format == "password" || strings.EqualFold(field.Metadata["cli.secret"], "true")
	multiline := field.Format == "textarea" || field.UIHints["input"] == "textarea"

	for {
		var response string
		var err error
		switch {
		case secret:
			response, err = r.driver.Password(ctx, InputConfig{Message: label, Help: help})
		case multiline:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal, Help: help})
		default:
			response, err = r.driver.Input(ctx, InputConfig{Message: label, Default: defaultVal, Help: help})
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(response) == "" && !rules.required {
			return state.SetValue(path, response)
		}
		if err := rules.validateString(response); err != nil {
			r.invalid(ctx, path, err)
			continue
		}
		return state.SetValue(path, response)
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, path string, state *State) error {
	value, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: boolDefault(state, path, field.Default),
		Help:    displayHelp(field),
	})
	if err != nil {
		return err
	}
	return state.SetValue(path, value)
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, path string, state *State) error {
	label := displayLabel(field)
	help := displayHelp(field)
	rules := fieldRules(field)
	integer := field.Type == model.FieldTypeInteger

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: numberDefault(state, path, field.Default),
			Help:    help,
		})
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			if rules.required {
				r.invalid(ctx, path, errors.New("required"))
				continue
			}
			return state.SetValue(path, nil)
		}

		var parsed any
		if integer {
			value, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				r.invalid(ctx, path, errors.New("expected an integer"))
				continue
			}
			parsed = value
		} else {
			value, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				r.invalid(ctx, path, errors.New("expected a number"))
				continue
			}
			parsed = value
		}

		if err := rules.validateNumber(parsed); err != nil {
			r.invalid(ctx, path, err)
			continue
		}
		return state.SetValue(path, parsed)
	}
}

func (r *Renderer) promptEnum(ctx context.Context, field model.Field, path string, state *State) error {
	options := stringifyEnum(field.Enum)
	defaultIdx := -1
	if value, ok := state.GetValue(path); ok {
		defaultIdx = indexOf(options, fmt.Sprint(value))
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			r.invalid(ctx, path, errors.New("selection out of range"))
			continue
		}
		return state.SetValue(path, options[idx])
	}
}

func (r *Renderer) promptArray(ctx context.Context, field model.Field, path string, state *State) error {
	rules := fieldRules(field)

	if len(field.Enum) > 0 {
		options := stringifyEnum(field.Enum)
		defaults := indicesOf(options, stringifySlice(arrayValue(state, path)))
		for {
			indices, err := r.driver.MultiSelect(ctx, SelectConfig{
				Message:  displayLabel(field),
				Options:  options,
				Defaults: defaults,
				Help:     displayHelp(field),
			})
			if err != nil {
				return err
			}
			selected := valuesAt(options, indices)
			if err := rules.validateCount(len(selected)); err != nil {
				r.invalid(ctx, path, err)
				continue
			}
			return state.SetValue(path, toAnySlice(selected))
		}
	}

	if field.Items == nil {
		return fmt.Errorf("tui: array field %s declares no item schema", path)
	}

	items := arrayValue(state, path)
	if len(items) == 0 && !rules.required {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s?", displayLabel(field)),
		})
		if err != nil {
			return err
		}
		if !add {
			return state.SetValue(path, []any{})
		}
	}

	for {
		itemPath := fmt.Sprintf("%s.%d", path, len(items))
		if err := r.promptField(ctx, *field.Items, itemPath, state); err != nil {
			return err
		}
		value, _ := state.GetValue(itemPath)
		items = append(items, value)

		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Add another?"})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	if err := rules.validateCount(len(items)); err != nil {
		return fmt.Errorf("tui: field %s: %w", path, err)
	}
	return state.SetValue(path, items)
}

func (r *Renderer) promptObject(ctx context.Context, field model.Field, path string, state *State) error {
	for _, child := range field.Nested {
		childPath := path + "." + child.Name
		if err := r.promptField(ctx, child, childPath, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) invalid(ctx context.Context, path string, err error) {
	_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, path, err))
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return encoded, nil
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if help := field.Metadata["cli.help"]; help != "" {
		return help
	}
	return field.Description
}

func checkGeometryKind(value geometry.Value, declared string) error {
	if declared == "" {
		return nil
	}
	kind, err := value.Kind()
	if err != nil {
		return err
	}
	if string(kind) != declared {
		return fmt.Errorf("expected %s geometry, got %s", declared, kind)
	}
	return nil
}

// declaredSRID reads the SRID stamped on field metadata, defaulting to WGS84.
func declaredSRID(field model.Field) int {
	raw := strings.TrimSpace(field.Metadata[model.MetadataGeometrySRID])
	if raw == "" {
		return geometry.SRIDWGS84
	}
	srid, err := strconv.Atoi(raw)
	if err != nil || srid <= 0 {
		return geometry.SRIDWGS84
	}
	return srid
}

func geometryDefault(state *State, path string) string {
	value, ok := state.GetValue(path)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case geometry.Value:
		if v.IsZero() {
			return ""
		}
		if text, err := geometry.EncodeEWKT(v); err == nil {
			return text
		}
	case *geometry.Value:
		if v == nil || v.IsZero() {
			return ""
		}
		if text, err := geometry.EncodeEWKT(*v); err == nil {
			return text
		}
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func stringDefault(state *State, path string, fallback any) string {
	if value, ok := state.GetValue(path); ok {
		if text, ok := value.(string); ok {
			return text
		}
	}
	if text, ok := fallback.(string); ok {
		return text
	}
	return ""
}

func boolDefault(state *State, path string, fallback any) bool {
	if value, ok := state.GetValue(path); ok {
		if b, ok := value.(bool); ok {
			return b
		}
	}
	if b, ok := fallback.(bool); ok {
		return b
	}
	return false
}

func numberDefault(state *State, path string, fallback any) string {
	if value, ok := state.GetValue(path); ok {
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return fmt.Sprint(value)
		}
	}
	switch fallback.(type) {
	case int, int32, int64, float32, float64:
		return fmt.Sprint(fallback)
	}
	return ""
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, fmt.Sprint(value))
	}
	return out
}

func stringifySlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, fmt.Sprint(value))
	}
	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

func arrayValue(state *State, path string) []any {
	if value, ok := state.GetValue(path); ok {
		switch v := value.(type) {
		case []any:
			return v
		case []string:
			return toAnySlice(v)
		}
	}
	return nil
}

type validationRules struct {
	required bool
	min      *float64
	max      *float64
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
}

func fieldRules(field model.Field) validationRules {
	rules := validationRules{required: field.Required}
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMin:
			if value, ok := parseFloat(rule.Params["value"]); ok {
				rules.min = &value
			}
		case model.ValidationRuleMax:
			if value, ok := parseFloat(rule.Params["value"]); ok {
				rules.max = &value
			}
		case model.ValidationRuleMinLength:
			if value, ok := parseInt(rule.Params["value"]); ok {
				rules.minLen = &value
			}
		case model.ValidationRuleMaxLength:
			if value, ok := parseInt(rule.Params["value"]); ok {
				rules.maxLen = &value
			}
		case model.ValidationRulePattern:
			if expr := rule.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					rules.pattern = re
				}
			}
		}
	}
	return rules
}

func (r validationRules) validateString(value string) error {
	if r.required && strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("shorter than %d characters", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("longer than %d characters", *r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return errors.New("does not match the required pattern")
	}
	return nil
}

func (r validationRules) validateNumber(value any) error {
	var number float64
	switch n := value.(type) {
	case int64:
		number = float64(n)
	case float64:
		number = n
	default:
		return fmt.Errorf("expected a number, got %T", value)
	}
	if r.min != nil && number < *r.min {
		return fmt.Errorf("below minimum %v", *r.min)
	}
	if r.max != nil && number > *r.max {
		return fmt.Errorf("above maximum %v", *r.max)
	}
	return nil
}

func (r validationRules) validateCount(n int) error {
	if r.required && n == 0 {
		return errors.New("required")
	}
	if r.minLen != nil && n < *r.minLen {
		return fmt.Errorf("fewer than %d entries", *r.minLen)
	}
	if r.maxLen != nil && n > *r.maxLen {
		return fmt.Errorf("more than %d entries", *r.maxLen)
	}
	return nil
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	return value, err == nil
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	return value, err == nil
}

func encodeForm(values map[string]any) string {
	encoded := url.Values{}
	flattenInto("", values, encoded)
	return encoded.Encode()
}

func flattenInto(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flattenInto(next, item, out)
		}
	case []any:
		for _, item := range v {
			out.Add(prefix+"[]", fmt.Sprint(item))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, item := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), item)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
