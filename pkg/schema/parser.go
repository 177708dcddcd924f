package schema

import "context"

// Parser normalises schema documents into operation wrappers that downstream
// packages consume.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// ParserOptions exposes parsing toggles.
type ParserOptions struct {
	// ResolveReferences controls whether the parser eagerly resolves $ref
	// pointers. Defaults to true for full documents.
	ResolveReferences bool

	// AllowPartialDocuments gates loading component-only inputs.
	AllowPartialDocuments bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithPartialDocuments toggles support for component-only documents.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration. Implementations under internal/schema should call this
// helper to remain consistent.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ResolveReferences:     true,
		AllowPartialDocuments: false,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// Construction helpers live in the top-level mapadmin package to avoid import
// cycles.
