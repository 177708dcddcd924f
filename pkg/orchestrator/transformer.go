package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Transformer mutates a Resource after building but before decorators run.
// Implementations can rename fields, inject metadata, or perform arbitrary
// rewrites.
type Transformer interface {
	Transform(ctx context.Context, resource *model.Resource) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, resource *model.Resource) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, resource *model.Resource) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, resource)
}

// PresetTransformer applies declarative overrides loaded from a JSON
// document. The document shape supports resource-level metadata and UI hints
// plus per-field patches addressed by dotted path ("office.address",
// "tags.items"):
//
//	{
//	  "metadata": {"admin.listFields": "[\"boundary\"]"},
//	  "uiHints": {"layout.title": "Districts"},
//	  "fields": {
//	    "boundary": {"label": "Boundary", "metadata": {"geometry.srid": "3857"}}
//	  }
//	}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Metadata map[string]string     `json:"metadata"`
	UIHints  map[string]string     `json:"uiHints"`
	Fields   map[string]fieldPatch `json:"fields"`
}

type fieldPatch struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Placeholder string            `json:"placeholder"`
	Rename      string            `json:"rename"`
	Metadata    map[string]string `json:"metadata"`
	UIHints     map[string]string `json:"uiHints"`
}

// NewPresetTransformer constructs a transformer from raw JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied resource.
func (t *PresetTransformer) Transform(ctx context.Context, resource *model.Resource) error {
	if resource == nil {
		return errors.New("preset transformer: resource is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(t.document.Metadata) > 0 {
		resource.Metadata = mergeStringMap(resource.Metadata, t.document.Metadata)
	}
	if len(t.document.UIHints) > 0 {
		resource.UIHints = mergeStringMap(resource.UIHints, t.document.UIHints)
	}

	for path, patch := range t.document.Fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		field := locateField(resource.Fields, strings.Split(path, "."))
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", path)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if field == nil {
		return
	}
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
	if len(patch.UIHints) > 0 {
		field.UIHints = mergeStringMap(field.UIHints, patch.UIHints)
	}
	if strings.TrimSpace(patch.Rename) != "" {
		field.Name = strings.TrimSpace(patch.Rename)
	}
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
