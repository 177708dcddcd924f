package changelist

import (
	"embed"
	"io/fs"
	"sync"

	rendertemplate "github.com/goliatone/go-mapadmin/pkg/render/template"
	"github.com/goliatone/go-mapadmin/pkg/render/template/gotemplate"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const (
	changelistTemplate   = "templates/changelist.tmpl"
	invalidSetupTemplate = "templates/invalid_setup.tmpl"
)

// TemplatesFS exposes the embedded page templates so callers can fork the
// bundle into their own engine.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     rendertemplate.TemplateRenderer
	defaultEngineErr  error
)

// pageTemplates returns the configured template engine, falling back to a
// shared engine over the embedded bundle.
func pageTemplates(opts Options) (rendertemplate.TemplateRenderer, error) {
	if opts.Templates != nil {
		return opts.Templates, nil
	}
	defaultEngineOnce.Do(func() {
		defaultEngine, defaultEngineErr = gotemplate.New(
			gotemplate.WithFS(embeddedTemplates),
			gotemplate.WithExtension(".tmpl"),
		)
	})
	return defaultEngine, defaultEngineErr
}
