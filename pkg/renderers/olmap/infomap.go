package olmap

import (
	"fmt"
	"html"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap/components"
)

// popupPolicy is the sanitizer applied to popup HTML before it is embedded in
// the map payload. It permits anchors and light inline markup, stripping
// everything else including scripts and event handlers.
var popupPolicy = func() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("a", "strong", "em", "span", "br", "small")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowAttrs("class").OnElements("a", "span", "small")
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.RequireParseableURLs(true)
	// Edit links are app-relative, so schemeless URLs must stay valid.
	policy.AllowRelativeURLs(true)
	return policy
}()

// SanitizePopup strips unsafe markup from popup HTML, leaving anchors and
// inline emphasis intact.
func SanitizePopup(markup string) string {
	return popupPolicy.Sanitize(markup)
}

// PopupLink builds the conventional list-view popup: an anchor to the row's
// edit page wrapping its escaped label. The result passes through the popup
// sanitizer so callers can embed it directly.
func PopupLink(editURL, label string) string {
	markup := fmt.Sprintf("<a href='%s'>%s</a>", html.EscapeString(editURL), html.EscapeString(label))
	return SanitizePopup(markup)
}

// InfoMapEntry pairs one geometry with the popup shown when it is selected.
type InfoMapEntry struct {
	Geometry  geometry.Value
	PopupHTML string
}

// InfoMap collects geometries from many rows onto a single read-only map, the
// aggregation the changelist renders above its result table. Entries are
// expected in the display SRID; zero geometries are skipped on Add.
type InfoMap struct {
	// Name distinguishes multiple maps on one page; it suffixes the container
	// id. Defaults to "info".
	Name string
	// SRID declares the spatial reference entries are expressed in.
	SRID int
	// Options carries map display options (layers, zoom, overlay style)
	// forwarded verbatim to the widget runtime.
	Options map[string]any

	entries []InfoMapEntry
}

// NewInfoMap constructs an empty info map for the given display SRID.
func NewInfoMap(name string, srid int) *InfoMap {
	if srid <= 0 {
		srid = geometry.SRIDWGS84
	}
	return &InfoMap{Name: name, SRID: srid}
}

// Add appends an entry. Zero geometries are ignored so callers can feed rows
// without checking for unset columns; popup HTML is sanitized on the way in.
func (m *InfoMap) Add(value geometry.Value, popupHTML string) {
	if m == nil || value.IsZero() {
		return
	}
	m.entries = append(m.entries, InfoMapEntry{
		Geometry:  value,
		PopupHTML: SanitizePopup(popupHTML),
	})
}

// Entries returns the collected entries in insertion order.
func (m *InfoMap) Entries() []InfoMapEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

// Len reports the number of collected entries.
func (m *InfoMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// IsEmpty reports whether no row contributed a geometry.
func (m *InfoMap) IsEmpty() bool {
	return m.Len() == 0
}

// Media returns the stylesheet/script set the rendered map requires. The
// changelist sums this with its base page media.
func (m *InfoMap) Media() render.Media {
	return render.Media{
		Stylesheets: []string{
			components.OpenLayersStylesheetURL,
			components.MapStylesheetHref,
		},
		Scripts: []render.Script{
			{Src: components.OpenLayersScriptURL},
			{Src: components.MapScriptHref, Defer: true},
		},
	}
}

// HTML renders the map container with its JSON payload. An empty map renders
// nothing so templates can embed the result unconditionally.
func (m *InfoMap) HTML() (string, error) {
	if m.IsEmpty() {
		return "", nil
	}

	payload, err := m.payload()
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(m.Name)
	if name == "" {
		name = "info"
	}

	var builder strings.Builder
	builder.WriteString(`<div id="`)
	builder.WriteString(html.EscapeString(componentControlID(name + "-map")))
	builder.WriteString(`" class="mapadmin-map mapadmin-map-info" data-mapadmin-widget="info" data-mapadmin-payload='`)
	builder.WriteString(html.EscapeString(string(payload)))
	builder.WriteString("'></div>\n")
	return builder.String(), nil
}

func (m *InfoMap) payload() ([]byte, error) {
	entries := make([]map[string]any, 0, len(m.entries))
	for idx, entry := range m.entries {
		encoded, err := geometry.EncodeGeoJSON(entry.Geometry.Geom)
		if err != nil {
			return nil, fmt.Errorf("olmap: encode info map entry %d: %w", idx, err)
		}
		entries = append(entries, map[string]any{
			"geometry": json.RawMessage(encoded),
			"html":     entry.PopupHTML,
		})
	}

	payload := map[string]any{
		"srid":    m.SRID,
		"entries": entries,
	}
	if len(m.Options) > 0 {
		payload["options"] = m.Options
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("olmap: encode info map payload: %w", err)
	}
	return encoded, nil
}
