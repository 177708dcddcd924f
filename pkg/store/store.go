// Package store defines the persistence contract admin components read and
// write rows through. Implementations live in the gormstore and memstore
// subpackages; both validate lookups against the declared resource schema so
// hand-edited query strings surface as ErrInvalidLookup instead of leaking
// into storage queries.
package store

import (
	"context"
	"errors"
	"strings"
)

// Row is a single stored record keyed by column name. Geometry columns hold
// geometry.Value entries; everything else keeps the driver's scan type.
type Row map[string]any

// Clone returns a shallow copy of the row so callers can mutate results
// without reaching into store internals.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	clone := make(Row, len(r))
	for key, value := range r {
		clone[key] = value
	}
	return clone
}

// Op enumerates the comparison operators a filter may use.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpContains Op = "contains"
	OpIn       Op = "in"
)

// ParseOp normalises a lookup token into a known operator. It reports false
// for anything outside the supported set; callers typically translate that
// into ErrInvalidLookup.
func ParseOp(token string) (Op, bool) {
	op := Op(strings.ToLower(strings.TrimSpace(token)))
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn:
		return op, true
	}
	return "", false
}

// Filter constrains a listing to rows whose column matches the operator. For
// OpIn the value should be a slice; single values are treated as a one-element
// set.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes one listing request: filters, an optional free-text search,
// ordering, and an offset/limit window. A zero Query lists everything in
// storage order.
type Query struct {
	Filters      []Filter
	Search       string
	SearchFields []string
	OrderBy      string
	Descending   bool
	Offset       int
	Limit        int
}

// Result carries one page of rows plus the total match count before the
// offset/limit window was applied.
type Result struct {
	Rows  []Row
	Total int64
}

// Store is the row storage contract. List applies the query's filters, search,
// ordering, and paging; Get, Save, and Delete cover single-row admin CRUD.
// Lookups naming unknown fields or operators fail with ErrInvalidLookup, and
// reads of missing rows fail with ErrNotFound; both are errors.Is-matchable
// through any wrapping.
type Store interface {
	List(ctx context.Context, query Query) (Result, error)
	Get(ctx context.Context, id any) (Row, error)
	Save(ctx context.Context, row Row) (Row, error)
	Delete(ctx context.Context, id any) error
}

var (
	// ErrNotFound reports a Get or Delete that matched no row.
	ErrNotFound = errors.New("store: row not found")

	// ErrInvalidLookup reports a query naming a field or operator the store
	// does not recognise. List pages translate it into an error-flag redirect
	// rather than a hard failure.
	ErrInvalidLookup = errors.New("store: invalid lookup")
)
