package mapadmin

import (
	internalloader "github.com/goliatone/go-mapadmin/internal/schema/loader"
	internalparser "github.com/goliatone/go-mapadmin/internal/schema/parser"
	"github.com/goliatone/go-mapadmin/pkg/schema"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return internalloader.New(cfg)
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...schema.ParserOption) schema.Parser {
	cfg := schema.NewParserOptions(options...)
	return internalparser.New(cfg)
}
