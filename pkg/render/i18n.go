package render

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Translator resolves a translation key for a locale. Implementations decide
// how params are interpolated; the helpers in this package only pass them
// through.
type Translator interface {
	Translate(locale, key string, params ...any) (string, error)
}

// MissingTranslationHandler produces the string used when a translation
// cannot be resolved. params carries whatever the call site supplied, err the
// reason (ErrMissingTranslator when no translator is configured).
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// ErrMissingTranslator is passed to MissingTranslationHandler when
// localisation runs without a configured translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

const (
	formTitleKeyHint    = "layout.titleKey"
	formSubtitleKeyHint = "layout.subtitleKey"

	fieldLabelKeyHint       = "labelKey"
	fieldDescriptionKeyHint = "descriptionKey"
	fieldPlaceholderKeyHint = "placeholderKey"
	fieldHelpTextKeyHint    = "helpTextKey"

	metadataActionsKey = "actions"
)

// T translates key, falling back to the supplied text (then to the key
// itself) when the translator is nil or misses.
func T(t Translator, locale, key, fallback string, params ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if t != nil {
		if msg, err := t.Translate(locale, key, params...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Pluralize picks the singular or plural format for count, gives the
// translator a chance to replace it, and interpolates the count. Formats
// without a %d verb are returned as-is, so "All results" style strings work.
func Pluralize(t Translator, locale string, count int, singular, plural string) string {
	format := plural
	if count == 1 {
		format = singular
	}
	format = T(t, locale, format, format, count)
	if strings.Contains(format, "%d") {
		return fmt.Sprintf(format, count)
	}
	return format
}

// LocalizeResource mutates the supplied resource in place, translating any
// configured `*Key` hints into their localized string values.
//
// This is best-effort: malformed metadata payloads are ignored and
// translation failures are routed through opts.OnMissing.
func LocalizeResource(resource *model.Resource, opts RenderOptions) {
	if resource == nil {
		return
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	localizeLayoutHints(resource, opts.Locale, opts.Translator, onMissing)
	localizeMetadataActions(resource, opts.Locale, opts.Translator, onMissing)
	localizeMetadataSections(resource, opts.Locale, opts.Translator, onMissing)

	for i := range resource.Fields {
		localizeField(&resource.Fields[i], opts.Locale, opts.Translator, onMissing)
	}
}

func localizeLayoutHints(resource *model.Resource, locale string, t Translator, onMissing MissingTranslationHandler) {
	if len(resource.UIHints) == 0 {
		return
	}

	if key := strings.TrimSpace(resource.UIHints[formTitleKeyHint]); key != "" {
		resource.UIHints["layout.title"] = translate(locale, key, strings.TrimSpace(resource.UIHints["layout.title"]), t, onMissing)
	}
	if key := strings.TrimSpace(resource.UIHints[formSubtitleKeyHint]); key != "" {
		resource.UIHints["layout.subtitle"] = translate(locale, key, strings.TrimSpace(resource.UIHints["layout.subtitle"]), t, onMissing)
	}
}

func localizeMetadataActions(resource *model.Resource, locale string, t Translator, onMissing MissingTranslationHandler) {
	raw := strings.TrimSpace(resource.Metadata[metadataActionsKey])
	if raw == "" {
		return
	}

	var actions []map[string]any
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return
	}

	changed := false
	for i := range actions {
		key := strings.TrimSpace(anyToString(actions[i]["labelKey"]))
		if key == "" {
			continue
		}
		fallback := strings.TrimSpace(anyToString(actions[i]["label"]))
		translated := translate(locale, key, fallback, t, onMissing)
		if translated != fallback {
			actions[i]["label"] = translated
			changed = true
		}
	}

	if !changed {
		return
	}
	if payload, err := json.Marshal(actions); err == nil {
		resource.Metadata[metadataActionsKey] = string(payload)
	}
}

func localizeMetadataSections(resource *model.Resource, locale string, t Translator, onMissing MissingTranslationHandler) {
	raw := strings.TrimSpace(resource.Metadata[layoutSectionsKey])
	if raw == "" {
		return
	}

	var sections []map[string]any
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return
	}

	changed := false
	for i := range sections {
		if key := strings.TrimSpace(anyToString(sections[i]["titleKey"])); key != "" {
			fallback := strings.TrimSpace(anyToString(sections[i]["title"]))
			translated := translate(locale, key, fallback, t, onMissing)
			if translated != fallback {
				sections[i]["title"] = translated
				changed = true
			}
		}
		if key := strings.TrimSpace(anyToString(sections[i]["descriptionKey"])); key != "" {
			fallback := strings.TrimSpace(anyToString(sections[i]["description"]))
			translated := translate(locale, key, fallback, t, onMissing)
			if translated != fallback {
				sections[i]["description"] = translated
				changed = true
			}
		}
	}

	if !changed {
		return
	}
	if payload, err := json.Marshal(sections); err == nil {
		resource.Metadata[layoutSectionsKey] = string(payload)
	}
}

func localizeField(field *model.Field, locale string, t Translator, onMissing MissingTranslationHandler) {
	if field == nil {
		return
	}

	if key := strings.TrimSpace(field.UIHints[fieldLabelKeyHint]); key != "" {
		field.Label = translate(locale, key, strings.TrimSpace(field.Label), t, onMissing)
	}
	if key := strings.TrimSpace(field.UIHints[fieldDescriptionKeyHint]); key != "" {
		field.Description = translate(locale, key, strings.TrimSpace(field.Description), t, onMissing)
	}
	if key := strings.TrimSpace(field.UIHints[fieldPlaceholderKeyHint]); key != "" {
		field.Placeholder = translate(locale, key, strings.TrimSpace(field.Placeholder), t, onMissing)
	}
	if key := strings.TrimSpace(field.UIHints[fieldHelpTextKeyHint]); key != "" {
		if field.UIHints == nil {
			field.UIHints = make(map[string]string)
		}
		field.UIHints["helpText"] = translate(locale, key, strings.TrimSpace(field.UIHints["helpText"]), t, onMissing)
	}

	for i := range field.Nested {
		localizeField(&field.Nested[i], locale, t, onMissing)
	}
	if field.Items != nil {
		localizeField(field.Items, locale, t, onMissing)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// missingTranslationDefault returns the "default" entry supplied in params,
// falling back to the key so missing translations stay visible.
func missingTranslationDefault(_, key string, params []any, _ error) string {
	for _, param := range params {
		values, ok := param.(map[string]any)
		if !ok {
			continue
		}
		value, exists := values["default"]
		if !exists || value == nil {
			continue
		}
		if fallback := strings.TrimSpace(anyToString(value)); fallback != "" {
			return fallback
		}
	}
	return key
}
