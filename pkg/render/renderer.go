// Package render defines the renderer contract shared by every output
// backend (HTML map forms, GeoJSON exports, terminal prompts) together
// with the helpers those backends have in common: a named registry,
// asset bookkeeping, hidden-field plumbing, error-path mapping, and a
// small translation layer.
package render

import (
	"context"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Renderer turns an admin resource into a byte representation (HTML,
// GeoJSON, plain text). Render receives per-request options so the same
// renderer instance can serve concurrent requests.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, resource model.Resource, options RenderOptions) ([]byte, error)
}
