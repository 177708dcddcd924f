// Package memstore implements the row store contract in process, for tests
// and example programs. Rows live in a slice, identifiers default to
// generated uuids, and the same schema whitelisting applies as in the SQL
// store so invalid lookups fail identically.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

// Store keeps rows for one resource in memory. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	rows       []store.Row
	idField    string
	columns    map[string]bool
	searchable []string
	newID      func() any
	logger     *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Option adjusts a Store during construction.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used when a saved row carries
// no identifier.
func WithIDGenerator(generate func() any) Option {
	return func(s *Store) {
		if generate != nil {
			s.newID = generate
		}
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds an empty store for the resource. The identifier field defaults
// to the resource's IDField and the searchable columns to its string fields.
func New(resource model.Resource, options ...Option) *Store {
	s := &Store{
		idField: resource.IDField,
		columns: map[string]bool{},
		newID:   func() any { return uuid.NewString() },
		logger:  slog.Default(),
	}
	if s.idField == "" {
		s.idField = "id"
	}
	s.columns[s.idField] = true
	for _, field := range resource.Fields {
		if field.Name == "" {
			continue
		}
		s.columns[field.Name] = true
		if field.Type == model.FieldTypeString {
			s.searchable = append(s.searchable, field.Name)
		}
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	return s
}

// Seed loads fixture rows, applying the same column pruning and identifier
// assignment as Save.
func (s *Store) Seed(rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		record := s.storableRow(row)
		if id, ok := record[s.idField]; !ok || isEmptyID(id) {
			record[s.idField] = s.newID()
		}
		s.rows = append(s.rows, record)
	}
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// List applies the query's filters, search, ordering, and paging in process.
func (s *Store) List(ctx context.Context, query store.Query) (store.Result, error) {
	if err := ctx.Err(); err != nil {
		return store.Result{}, err
	}
	if err := s.validateQuery(query); err != nil {
		return store.Result{}, err
	}

	searchFields := query.SearchFields
	if len(searchFields) == 0 {
		searchFields = s.searchable
	}

	s.mu.RLock()
	matched := make([]store.Row, 0, len(s.rows))
	for _, row := range s.rows {
		if matchesQuery(row, query, searchFields) {
			matched = append(matched, row.Clone())
		}
	}
	s.mu.RUnlock()

	if query.OrderBy != "" {
		orderBy, descending := query.OrderBy, query.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][orderBy], matched[j][orderBy])
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	total := int64(len(matched))
	page := pageWindow(matched, query.Offset, query.Limit)
	s.logger.Debug("memstore: listed rows",
		"filters", len(query.Filters), "rows", len(page), "total", total)
	return store.Result{Rows: page, Total: total}, nil
}

// Get returns the row with the given identifier, or ErrNotFound. String and
// numeric identifiers compare loosely so URL parameters match stored keys.
func (s *Store) Get(ctx context.Context, id any) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if equalValues(row[s.idField], id) {
			return row.Clone(), nil
		}
	}
	return nil, fmt.Errorf("memstore: get %v: %w", id, store.ErrNotFound)
}

// Save inserts or updates the row, keyed by the identifier field. Updates
// merge onto the stored row so partial submissions keep untouched columns.
func (s *Store) Save(ctx context.Context, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, errors.New("memstore: save: row is empty")
	}
	record := s.storableRow(row)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := record[s.idField]
	if !ok || isEmptyID(id) {
		id = s.newID()
		record[s.idField] = id
	}
	for i, existing := range s.rows {
		if equalValues(existing[s.idField], id) {
			merged := existing.Clone()
			for key, value := range record {
				merged[key] = value
			}
			s.rows[i] = merged
			s.logger.Debug("memstore: updated row", "id", id)
			return merged.Clone(), nil
		}
	}
	s.rows = append(s.rows, record)
	s.logger.Debug("memstore: inserted row", "id", id)
	return record.Clone(), nil
}

// Delete removes the row with the given identifier, or reports ErrNotFound.
func (s *Store) Delete(ctx context.Context, id any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if equalValues(row[s.idField], id) {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			s.logger.Debug("memstore: deleted row", "id", id)
			return nil
		}
	}
	return fmt.Errorf("memstore: delete %v: %w", id, store.ErrNotFound)
}

func (s *Store) validateQuery(query store.Query) error {
	for _, filter := range query.Filters {
		if !s.columns[filter.Field] {
			s.logger.Warn("memstore: rejected filter field", "field", filter.Field)
			return fmt.Errorf("memstore: filter field %q: %w", filter.Field, store.ErrInvalidLookup)
		}
		if _, ok := store.ParseOp(string(filter.Op)); !ok {
			s.logger.Warn("memstore: rejected filter op", "field", filter.Field, "op", string(filter.Op))
			return fmt.Errorf("memstore: filter op %q: %w", filter.Op, store.ErrInvalidLookup)
		}
	}
	for _, field := range query.SearchFields {
		if !s.columns[field] {
			s.logger.Warn("memstore: rejected search field", "field", field)
			return fmt.Errorf("memstore: search field %q: %w", field, store.ErrInvalidLookup)
		}
	}
	if query.OrderBy != "" && !s.columns[query.OrderBy] {
		s.logger.Warn("memstore: rejected order column", "column", query.OrderBy)
		return fmt.Errorf("memstore: order by %q: %w", query.OrderBy, store.ErrInvalidLookup)
	}
	return nil
}

func (s *Store) storableRow(row store.Row) store.Row {
	record := make(store.Row, len(row))
	for key, value := range row {
		if s.columns[key] {
			record[key] = value
		}
	}
	return record
}

func matchesQuery(row store.Row, query store.Query, searchFields []string) bool {
	for _, filter := range query.Filters {
		if !matchesFilter(row[filter.Field], filter) {
			return false
		}
	}
	search := strings.TrimSpace(query.Search)
	if search == "" || len(searchFields) == 0 {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range searchFields {
		if strings.Contains(strings.ToLower(valueText(row[field])), needle) {
			return true
		}
	}
	return false
}

func matchesFilter(value any, filter store.Filter) bool {
	switch filter.Op {
	case store.OpEq:
		return equalValues(value, filter.Value)
	case store.OpNe:
		return !equalValues(value, filter.Value)
	case store.OpGt:
		return compareValues(value, filter.Value) > 0
	case store.OpGte:
		return compareValues(value, filter.Value) >= 0
	case store.OpLt:
		return compareValues(value, filter.Value) < 0
	case store.OpLte:
		return compareValues(value, filter.Value) <= 0
	case store.OpContains:
		return strings.Contains(strings.ToLower(valueText(value)), strings.ToLower(valueText(filter.Value)))
	case store.OpIn:
		for _, candidate := range inValues(filter.Value) {
			if equalValues(value, candidate) {
				return true
			}
		}
	}
	return false
}

// equalValues compares loosely: numbers match across int/float/string forms
// so URL parameters line up with stored values, everything else falls back to
// text equality.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return valueText(a) == valueText(b)
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(valueText(a), valueText(b))
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func valueText(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func pageWindow(rows []store.Row, offset, limit int) []store.Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []store.Row{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func isEmptyID(id any) bool {
	switch typed := id.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	}
	return false
}

func inValues(value any) []any {
	switch typed := value.(type) {
	case []any:
		return typed
	case []string:
		values := make([]any, len(typed))
		for i, v := range typed {
			values[i] = v
		}
		return values
	default:
		return []any{value}
	}
}
