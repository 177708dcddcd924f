package changelist

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/store"
)

// ErrInvalidListing marks listing parameters the handler could not parse, such
// as a non-numeric page number. The handler answers it the same way as a store
// lookup rejection: redirect with the error flag set.
var ErrInvalidListing = errors.New("changelist: invalid listing parameters")

const lookupSeparator = "__"

// listing is one parsed list request: the store query plus the paging state the
// page context needs back.
type listing struct {
	Query   store.Query
	Page    int
	PerPage int
	Search  string
}

// parseListing turns the request's query string into a store query. Reserved
// parameters drive paging, search, and ordering; every other parameter becomes
// a field filter. Field names are not validated here: the store owns its
// column whitelist and rejects unknown ones with ErrInvalidLookup.
func parseListing(r *http.Request, opts Options) (listing, error) {
	params := r.URL.Query()
	reserved := map[string]bool{
		opts.PageParam:      true,
		opts.PerPageParam:   true,
		opts.SearchParam:    true,
		opts.OrderParam:     true,
		opts.ErrorFlagParam: true,
		opts.FormatParam:    true,
	}

	page := 1
	if raw := strings.TrimSpace(params.Get(opts.PageParam)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return listing{}, fmt.Errorf("changelist: page %q: %w", raw, ErrInvalidListing)
		}
		page = parsed
	}

	perPage := opts.PageSize
	if raw := strings.TrimSpace(params.Get(opts.PerPageParam)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return listing{}, fmt.Errorf("changelist: per-page %q: %w", raw, ErrInvalidListing)
		}
		perPage = parsed
	}
	perPage = clampPageSize(perPage, opts)

	search := strings.TrimSpace(params.Get(opts.SearchParam))

	query := store.Query{
		Search: search,
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}

	if raw := strings.TrimSpace(params.Get(opts.OrderParam)); raw != "" {
		query.OrderBy = strings.TrimPrefix(raw, "-")
		query.Descending = strings.HasPrefix(raw, "-")
	}

	// Filter order follows sorted parameter names so repeated requests build
	// identical queries.
	keys := make([]string, 0, len(params))
	for key := range params {
		if reserved[key] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, op := splitLookup(key)
		for _, raw := range params[key] {
			query.Filters = append(query.Filters, store.Filter{
				Field: field,
				Op:    op,
				Value: lookupValue(op, raw),
			})
		}
	}

	return listing{Query: query, Page: page, PerPage: perPage, Search: search}, nil
}

// splitLookup breaks a parameter name into field and operator. Names without a
// recognised __op suffix filter on equality; whatever is left of the name goes
// to the store verbatim, so unknown fields still fail inside List.
func splitLookup(key string) (string, store.Op) {
	if idx := strings.LastIndex(key, lookupSeparator); idx > 0 {
		if op, ok := store.ParseOp(key[idx+len(lookupSeparator):]); ok {
			return key[:idx], op
		}
	}
	return key, store.OpEq
}

// lookupValue shapes the raw parameter for the operator: in-lookups split on
// commas, everything else passes through as text.
func lookupValue(op store.Op, raw string) any {
	if op != store.OpIn {
		return raw
	}
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		values = append(values, strings.TrimSpace(part))
	}
	return values
}

// pageCount reports how many pages the result set spans. An empty set still
// has one page so the bare list renders instead of redirecting.
func pageCount(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}
