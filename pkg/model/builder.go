package model

import (
	"github.com/goliatone/go-mapadmin/internal/model"
	"github.com/goliatone/go-mapadmin/pkg/schema"
)

// Builder converts schema operations into admin resources.
type Builder interface {
	Build(op schema.Operation) (Resource, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler     func(string) string
	defaultSRID int
	idField     string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithDefaultSRID sets the SRID stamped on geometry fields whose schema does
// not declare one. Defaults to 4326.
func WithDefaultSRID(srid int) BuilderOption {
	return func(opts *builderOptions) {
		opts.defaultSRID = srid
	}
}

// WithIDField overrides the identifier field name assumed for resources that
// do not configure one. Defaults to "id".
func WithIDField(name string) BuilderOption {
	return func(opts *builderOptions) {
		opts.idField = name
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}

	internalOpts := model.Options{}
	if cfg.labeler != nil {
		internalOpts.Labeler = cfg.labeler
	}
	if cfg.defaultSRID > 0 {
		internalOpts.DefaultSRID = cfg.defaultSRID
	}
	if cfg.idField != "" {
		internalOpts.IDField = cfg.idField
	}

	return model.New(internalOpts)
}
