package changelist

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

type listColumn struct {
	Name  string
	Label string
}

// renderPage builds the full template context for the HTML list view and runs
// it through the page template. The map only enters the context when at least
// one row contributed a geometry; its media rides along the same way.
func renderPage(opts Options, r *http.Request, req listing, result store.Result, entries []mapEntry) (string, error) {
	engine, err := pageTemplates(opts)
	if err != nil {
		return "", err
	}

	media := opts.BaseMedia
	mapHTML := ""
	if len(entries) > 0 {
		infoMap := buildInfoMap(opts, entries)
		markup, err := infoMap.HTML()
		if err != nil {
			return "", err
		}
		mapHTML = markup
		media = render.MergeMedia(media, infoMap.Media())
	}

	columns := listColumns(opts)
	rows := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, cellText(row[column.Name]))
		}
		rows = append(rows, map[string]any{
			"label":    rowLabel(opts, row),
			"edit_url": editURL(opts, row),
			"cells":    cells,
		})
	}

	title := strings.TrimSpace(opts.Resource.Title)
	if title == "" {
		title = opts.Resource.Name
	}

	data := map[string]any{
		"list": map[string]any{
			"name":  opts.Resource.Name,
			"title": title,
		},
		"columns":    columnsContext(columns),
		"rows":       rows,
		"search":     map[string]any{"param": opts.SearchParam, "value": req.Search},
		"pagination": paginationContext(r, opts, req, result.Total),
		"result_note": render.Pluralize(opts.Translator, opts.Locale, int(result.Total),
			"%d result", "%d results"),
		"selection_note": fmt.Sprintf(render.T(opts.Translator, opts.Locale,
			"0 of %d selected", "0 of %d selected"), len(result.Rows)),
		"selection_note_all": render.Pluralize(opts.Translator, opts.Locale, int(result.Total),
			"%d selected", "All %d selected"),
		"map_html": mapHTML,
		"media":    mediaContext(media),
	}

	body, err := engine.RenderTemplate(changelistTemplate, data)
	if err != nil {
		return "", fmt.Errorf("changelist: render page template: %w", err)
	}
	return body, nil
}

// listColumns resolves the extra table columns. The row-link column is always
// present, so no configured columns means a single-column table.
func listColumns(opts Options) []listColumn {
	columns := make([]listColumn, 0, len(opts.Columns))
	for _, name := range opts.Columns {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		label := name
		if field, ok := opts.Resource.Field(name); ok && strings.TrimSpace(field.Label) != "" {
			label = field.Label
		}
		columns = append(columns, listColumn{Name: name, Label: label})
	}
	return columns
}

func columnsContext(columns []listColumn) []map[string]any {
	out := make([]map[string]any, 0, len(columns))
	for _, column := range columns {
		out = append(out, map[string]any{"name": column.Name, "label": column.Label})
	}
	return out
}

// rowLabel picks the text a row is listed under: the hook first, then the
// resource's own label chain (label field, identifier, title, name).
func rowLabel(opts Options, row store.Row) string {
	if opts.Label != nil {
		if label := strings.TrimSpace(opts.Label(opts.Resource, row)); label != "" {
			return label
		}
	}
	return opts.Resource.LabelFor(row)
}

// popupLabel picks the anchor text for a row's map popup. Configured popup
// metadata wins over the plain row label; the link builder escapes whatever
// comes back, so the label stays text either way.
func popupLabel(opts Options, row store.Row) string {
	resource := opts.Resource
	if text := strings.TrimSpace(resource.Metadata[mapcfg.PopupTextMetadataKey]); text != "" {
		return text
	}
	if path := strings.TrimSpace(resource.Metadata[mapcfg.PopupLabelMetadataKey]); path != "" {
		if text := cellText(row[path]); text != "" {
			return text
		}
	}
	return rowLabel(opts, row)
}

// editURL builds the link to a row's edit page. The hook wins; otherwise the
// resource edit path has its identifier placeholder substituted, falling back
// to appending the escaped identifier to the endpoint.
func editURL(opts Options, row store.Row) string {
	if opts.URLFor != nil {
		if href := strings.TrimSpace(opts.URLFor(opts.Resource, row)); href != "" {
			return href
		}
	}

	resource := opts.Resource
	id := url.PathEscape(cellText(row[resource.IDField]))

	base := strings.TrimSpace(resource.EditPath)
	if base == "" {
		base = strings.TrimSpace(resource.Endpoint)
	}
	if base == "" {
		base = "/" + resource.Name
	}

	if resource.IDField != "" {
		placeholder := "{" + resource.IDField + "}"
		if strings.Contains(base, placeholder) {
			return strings.ReplaceAll(base, placeholder, id)
		}
	}
	return strings.TrimRight(base, "/") + "/" + id
}

// cellText renders one row value for the table. Geometries show their kind
// instead of raw coordinates; everything else prints the way fmt would.
func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case geometry.Value:
		return geometryCellText(v)
	case *geometry.Value:
		if v == nil {
			return ""
		}
		return geometryCellText(*v)
	default:
		return fmt.Sprint(v)
	}
}

func geometryCellText(v geometry.Value) string {
	if v.IsZero() {
		return ""
	}
	kind, err := v.Kind()
	if err != nil {
		return "geometry"
	}
	return string(kind)
}

func paginationContext(r *http.Request, opts Options, req listing, total int64) map[string]any {
	pages := pageCount(total, req.PerPage)
	ctx := map[string]any{
		"page":     req.Page,
		"pages":    pages,
		"per_page": req.PerPage,
		"total":    total,
		"has_prev": req.Page > 1,
		"has_next": req.Page < pages,
	}
	if req.Page > 1 {
		ctx["prev_url"] = pageURL(r, opts, req.Page-1)
	}
	if req.Page < pages {
		ctx["next_url"] = pageURL(r, opts, req.Page+1)
	}
	return ctx
}

// pageURL rewrites the current request URL to point at another page, keeping
// filters, search, and ordering intact.
func pageURL(r *http.Request, opts Options, page int) string {
	values := r.URL.Query()
	values.Set(opts.PageParam, strconv.Itoa(page))
	return r.URL.Path + "?" + values.Encode()
}

func mediaContext(media render.Media) map[string]any {
	scripts := make([]map[string]any, 0, len(media.Scripts))
	for _, script := range media.Scripts {
		scripts = append(scripts, map[string]any{
			"src":   script.Src,
			"defer": script.Defer,
		})
	}
	return map[string]any{
		"stylesheets": media.Stylesheets,
		"scripts":     scripts,
	}
}
