// Package gormstore implements the row store contract on GORM. A Store is
// bound to one resource: the resource's declared fields become the column
// whitelist every filter, search, and order clause is checked against before
// any SQL is built, and its geometry fields are decoded into geometry.Value
// on the way out.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

// Store reads and writes one table through GORM. Construct it with New; the
// zero value is not usable.
type Store struct {
	db          *gorm.DB
	dialect     string
	table       string
	idColumn    string
	columns     map[string]bool
	columnOrder []string
	geometry    map[string]int
	searchable  []string
	displaySRID int
	newID       func() any
	logger      *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Option adjusts a Store during construction.
type Option func(*Store)

// WithTable overrides the table name derived from the resource.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// WithDisplaySRID reprojects geometry columns to the given reference system
// in SQL. Only the postgres dialect honours it; sqlite deployments reproject
// in process instead.
func WithDisplaySRID(srid int) Option {
	return func(s *Store) {
		if srid > 0 {
			s.displaySRID = srid
		}
	}
}

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

// New binds a store to the resource's table. The table name defaults to the
// lowercased resource name, the identifier column to the resource's IDField,
// and the searchable columns to the resource's string fields.
func New(db *gorm.DB, resource model.Resource, options ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("gormstore: db is required")
	}
	if len(resource.Fields) == 0 {
		return nil, fmt.Errorf("gormstore: resource %q declares no fields", resource.Name)
	}

	s := &Store{
		db:       db,
		dialect:  db.Dialector.Name(),
		table:    strings.ToLower(resource.Name),
		idColumn: resource.IDField,
		columns:  map[string]bool{},
		geometry: map[string]int{},
		newID:    func() any { return uuid.NewString() },
		logger:   slog.Default(),
	}
	if s.idColumn == "" {
		s.idColumn = "id"
	}
	s.addColumn(s.idColumn)
	for _, field := range resource.Fields {
		s.addColumn(field.Name)
		if field.IsGeometry() {
			s.geometry[field.Name] = declaredSRID(field)
		} else if field.Type == model.FieldTypeString {
			s.searchable = append(s.searchable, field.Name)
		}
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	if s.table == "" {
		return nil, errors.New("gormstore: table name is required")
	}
	return s, nil
}

// List runs the query against the bound table. The total reflects all rows
// matching the filters and search, not just the returned page.
func (s *Store) List(ctx context.Context, query store.Query) (store.Result, error) {
	if err := s.validateQuery(query); err != nil {
		return store.Result{}, err
	}
	tx := s.filtered(s.session(ctx), query)

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return store.Result{}, fmt.Errorf("gormstore: count %s rows: %w", s.table, err)
	}

	tx = tx.Select(s.selectClause())
	if query.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: query.OrderBy},
			Desc:   query.Descending,
		})
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var records []map[string]any
	if err := tx.Find(&records).Error; err != nil {
		return store.Result{}, fmt.Errorf("gormstore: list %s rows: %w", s.table, err)
	}

	rows := make([]store.Row, 0, len(records))
	for _, record := range records {
		row, err := s.decodeRow(record)
		if err != nil {
			return store.Result{}, err
		}
		rows = append(rows, row)
	}
	s.logger.Debug("gormstore: listed rows",
		"table", s.table, "filters", len(query.Filters), "rows", len(rows), "total", total)
	return store.Result{Rows: rows, Total: total}, nil
}

// Get returns the row with the given identifier, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id any) (store.Row, error) {
	record := map[string]any{}
	err := s.session(ctx).
		Select(s.selectClause()).
		Where(quoteIdent(s.idColumn)+" = ?", id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("gormstore: get %v: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: get %s row %v: %w", s.table, id, err)
	}
	return s.decodeRow(record)
}

// Save inserts or updates the row, keyed by the identifier column. Rows
// without an identifier get a generated one; numeric key schemes should
// supply their identifiers explicitly or install WithIDGenerator. The stored
// row is read back so callers see database-assigned state.
func (s *Store) Save(ctx context.Context, row store.Row) (store.Row, error) {
	if len(row) == 0 {
		return nil, errors.New("gormstore: save: row is empty")
	}
	record := s.storableRecord(row)

	id, ok := record[s.idColumn]
	if !ok || isEmptyID(id) {
		id = s.newID()
		record[s.idColumn] = id
	} else {
		exists, err := s.rowExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			updates := make(map[string]any, len(record))
			for key, value := range record {
				if key != s.idColumn {
					updates[key] = value
				}
			}
			if len(updates) > 0 {
				err := s.session(ctx).
					Where(quoteIdent(s.idColumn)+" = ?", id).
					Updates(updates).Error
				if err != nil {
					return nil, fmt.Errorf("gormstore: update %s row %v: %w", s.table, id, err)
				}
			}
			s.logger.Debug("gormstore: updated row", "table", s.table, "id", id)
			return s.Get(ctx, id)
		}
	}

	if err := s.session(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("gormstore: insert %s row %v: %w", s.table, id, err)
	}
	s.logger.Debug("gormstore: inserted row", "table", s.table, "id", id)
	return s.Get(ctx, id)
}

// Delete removes the row with the given identifier, or reports ErrNotFound.
func (s *Store) Delete(ctx context.Context, id any) error {
	result := s.session(ctx).Where(quoteIdent(s.idColumn)+" = ?", id).Delete(nil)
	if result.Error != nil {
		return fmt.Errorf("gormstore: delete %s row %v: %w", s.table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("gormstore: delete %v: %w", id, store.ErrNotFound)
	}
	s.logger.Debug("gormstore: deleted row", "table", s.table, "id", id)
	return nil
}

func (s *Store) session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func (s *Store) addColumn(name string) {
	if name == "" || s.columns[name] {
		return
	}
	s.columns[name] = true
	s.columnOrder = append(s.columnOrder, name)
}

// validateQuery rejects lookups naming unknown columns or operators before
// any SQL is assembled.
func (s *Store) validateQuery(query store.Query) error {
	for _, filter := range query.Filters {
		if !s.columns[filter.Field] {
			s.logger.Warn("gormstore: rejected filter field", "table", s.table, "field", filter.Field)
			return fmt.Errorf("gormstore: filter field %q: %w", filter.Field, store.ErrInvalidLookup)
		}
		if _, ok := store.ParseOp(string(filter.Op)); !ok {
			s.logger.Warn("gormstore: rejected filter op",
				"table", s.table, "field", filter.Field, "op", string(filter.Op))
			return fmt.Errorf("gormstore: filter op %q: %w", filter.Op, store.ErrInvalidLookup)
		}
	}
	for _, field := range query.SearchFields {
		if !s.columns[field] {
			s.logger.Warn("gormstore: rejected search field", "table", s.table, "field", field)
			return fmt.Errorf("gormstore: search field %q: %w", field, store.ErrInvalidLookup)
		}
	}
	if query.OrderBy != "" && !s.columns[query.OrderBy] {
		s.logger.Warn("gormstore: rejected order column", "table", s.table, "column", query.OrderBy)
		return fmt.Errorf("gormstore: order by %q: %w", query.OrderBy, store.ErrInvalidLookup)
	}
	return nil
}

func (s *Store) filtered(tx *gorm.DB, query store.Query) *gorm.DB {
	for _, filter := range query.Filters {
		tx = s.applyFilter(tx, filter)
	}
	search := strings.TrimSpace(query.Search)
	if search == "" {
		return tx
	}
	fields := query.SearchFields
	if len(fields) == 0 {
		fields = s.searchable
	}
	if len(fields) == 0 {
		return tx
	}
	conditions := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	needle := "%" + escapeLike(search) + "%"
	for _, field := range fields {
		conditions = append(conditions, fmt.Sprintf(`%s %s ? ESCAPE '\'`, quoteIdent(field), s.likeOperator()))
		args = append(args, needle)
	}
	return tx.Where(strings.Join(conditions, " OR "), args...)
}

func (s *Store) applyFilter(tx *gorm.DB, filter store.Filter) *gorm.DB {
	column := quoteIdent(filter.Field)
	switch filter.Op {
	case store.OpEq:
		return tx.Where(column+" = ?", filter.Value)
	case store.OpNe:
		return tx.Where(column+" <> ?", filter.Value)
	case store.OpGt:
		return tx.Where(column+" > ?", filter.Value)
	case store.OpGte:
		return tx.Where(column+" >= ?", filter.Value)
	case store.OpLt:
		return tx.Where(column+" < ?", filter.Value)
	case store.OpLte:
		return tx.Where(column+" <= ?", filter.Value)
	case store.OpContains:
		needle := "%" + escapeLike(fmt.Sprint(filter.Value)) + "%"
		return tx.Where(fmt.Sprintf(`%s %s ? ESCAPE '\'`, column, s.likeOperator()), needle)
	case store.OpIn:
		return tx.Where(column+" IN ?", inValues(filter.Value))
	}
	return tx
}

func (s *Store) likeOperator() string {
	if s.dialect == DriverPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

func (s *Store) selectClause() string {
	parts := make([]string, 0, len(s.columnOrder))
	for _, column := range s.columnOrder {
		parts = append(parts, s.selectExpr(column))
	}
	return strings.Join(parts, ", ")
}

// selectExpr reads geometry columns as EWKT text on postgres, reprojecting
// in SQL when a display SRID differs from the declared one. Other dialects
// store EWKT text directly, so the plain column suffices.
func (s *Store) selectExpr(column string) string {
	declared, isGeometry := s.geometry[column]
	if !isGeometry || s.dialect != DriverPostgres {
		return quoteIdent(column)
	}
	expr := quoteIdent(column)
	if s.displaySRID > 0 && s.displaySRID != declared {
		expr = fmt.Sprintf("ST_Transform(%s, %d)", expr, s.displaySRID)
	}
	return fmt.Sprintf("ST_AsEWKT(%s) AS %s", expr, quoteIdent(column))
}

// decodeRow routes geometry columns through geometry.Value so callers never
// see raw EWKT text. NULL geometries decode to nil.
func (s *Store) decodeRow(record map[string]any) (store.Row, error) {
	row := make(store.Row, len(record))
	for key, value := range record {
		if _, ok := s.geometry[key]; ok {
			var geom geometry.Value
			if err := geom.Scan(value); err != nil {
				return nil, fmt.Errorf("gormstore: decode %s column %q: %w", s.table, key, err)
			}
			if geom.IsZero() {
				row[key] = nil
			} else {
				row[key] = geom
			}
			continue
		}
		row[key] = value
	}
	return row, nil
}

// storableRecord keeps only declared columns so transport scaffolding such as
// CSRF tokens never reaches SQL.
func (s *Store) storableRecord(row store.Row) map[string]any {
	record := make(map[string]any, len(row))
	for key, value := range row {
		if !s.columns[key] {
			continue
		}
		if pointer, ok := value.(*geometry.Value); ok {
			if pointer == nil {
				value = nil
			} else {
				value = *pointer
			}
		}
		record[key] = value
	}
	return record
}

func (s *Store) rowExists(ctx context.Context, id any) (bool, error) {
	var count int64
	err := s.session(ctx).Where(quoteIdent(s.idColumn)+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gormstore: check %s row %v: %w", s.table, id, err)
	}
	return count > 0, nil
}

func declaredSRID(field model.Field) int {
	if raw := field.Metadata[model.MetadataGeometrySRID]; raw != "" {
		if srid, err := strconv.Atoi(raw); err == nil && srid > 0 {
			return srid
		}
	}
	return geometry.SRIDWGS84
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

func quoteIdent(name string) string {
	return `"` + name + `"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
