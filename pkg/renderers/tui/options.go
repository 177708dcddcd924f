package tui

// OutputFormat controls how collected values serialise once every prompt has
// been answered.
type OutputFormat string

const (
	// OutputFormatJSON emits an application/json object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits the payload a browser form would post.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a line-per-value text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme carries the prefixes printed ahead of informational and validation
// messages. Kept to plain strings so callers decide on ANSI styling.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates collected values before serialisation.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the renderer.
type Option func(*Renderer)

// WithPromptDriver swaps the prompt driver. Tests script sessions this way.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the serialisation format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer registers a hook that rewrites collected values
// before they serialise.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
