package changelist

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/renderers/geojson"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

// HTTPError lets guard errors choose their response status.
type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

const formatGeoJSON = "geojson"

// Handler builds a net/http handler with default options plus any overrides.
// It is an alias of NewHandler to match the recommended component API surface.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options
// value. Callers are expected to pass an Options value produced by NewOptions
// (or equivalent) so defaults/clamps are applied.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		if opts.Store == nil {
			opts.Logger.Error("changelist: no store configured", "resource", opts.Resource.Name)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(opts.FormatParam)))
		if format != "" && format != formatGeoJSON {
			http.Error(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
			return
		}

		req, err := parseListing(r, opts)
		if err != nil {
			opts.Logger.Warn("changelist: bad listing parameters",
				"resource", opts.Resource.Name,
				"error", err)
			redirectLookupError(w, r, opts)
			return
		}

		result, err := opts.Store.List(r.Context(), req.Query)
		if err != nil {
			if errors.Is(err, store.ErrInvalidLookup) {
				opts.Logger.Warn("changelist: rejected lookup",
					"resource", opts.Resource.Name,
					"error", err)
				redirectLookupError(w, r, opts)
				return
			}
			opts.Logger.Error("changelist: list rows",
				"resource", opts.Resource.Name,
				"error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// A page past the end of the result set is a lookup error too, the
		// same answer a malformed page number gets.
		if req.Page > pageCount(result.Total, req.PerPage) {
			opts.Logger.Warn("changelist: page out of range",
				"resource", opts.Resource.Name,
				"page", req.Page,
				"total", result.Total)
			redirectLookupError(w, r, opts)
			return
		}

		entries := aggregateRows(opts, result.Rows)

		if format == formatGeoJSON {
			writeGeoJSON(w, r, opts, entries)
			return
		}

		body, err := renderPage(opts, r, req, result, entries)
		if err != nil {
			opts.Logger.Error("changelist: render page",
				"resource", opts.Resource.Name,
				"error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, body)
	})
}

// redirectLookupError answers a rejected lookup. The first failure redirects
// to the bare path with only the error flag set, dropping the offending
// parameters. If the flag is already present the redirect clearly did not
// help, so the database-error page renders instead of looping.
func redirectLookupError(w http.ResponseWriter, r *http.Request, opts Options) {
	if r.URL.Query().Has(opts.ErrorFlagParam) {
		renderInvalidSetup(w, r, opts)
		return
	}
	http.Redirect(w, r, r.URL.Path+"?"+opts.ErrorFlagParam+"=1", http.StatusFound)
}

func renderInvalidSetup(w http.ResponseWriter, r *http.Request, opts Options) {
	title := render.T(opts.Translator, opts.Locale, "Database error", "Database error")

	engine, err := pageTemplates(opts)
	if err == nil {
		body, renderErr := engine.RenderTemplate(invalidSetupTemplate, map[string]any{"title": title})
		if renderErr == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			if r.Method != http.MethodHead {
				_, _ = io.WriteString(w, body)
			}
			return
		}
		err = renderErr
	}
	opts.Logger.Error("changelist: render invalid setup page",
		"resource", opts.Resource.Name,
		"error", err)
	http.Error(w, title, http.StatusInternalServerError)
}

// writeGeoJSON exports the current page's aggregation as one FeatureCollection,
// a feature per row carrying its label and edit link as properties.
func writeGeoJSON(w http.ResponseWriter, r *http.Request, opts Options, entries []mapEntry) {
	collection := geojson.NewCollection(opts.DisplaySRID)
	for _, entry := range entries {
		feature := geojson.Feature{
			ID:       entry.Row[opts.Resource.IDField],
			Geometry: entry.Value,
			Properties: map[string]any{
				"label":   rowLabel(opts, entry.Row),
				"editUrl": editURL(opts, entry.Row),
			},
		}
		if err := collection.AddFeature(feature); err != nil {
			opts.Logger.Warn("changelist: export feature",
				"resource", opts.Resource.Name,
				"error", err)
		}
	}

	payload, err := collection.Encode()
	if err != nil {
		opts.Logger.Error("changelist: encode geojson",
			"resource", opts.Resource.Name,
			"error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", geojson.ContentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
