package mapadmin

import (
	"io/fs"

	olmap "github.com/goliatone/go-mapadmin/pkg/renderers/olmap"
)

// EmbeddedTemplates exposes the built-in olmap renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	fsys := olmap.TemplatesFS()
	return fsys
}
