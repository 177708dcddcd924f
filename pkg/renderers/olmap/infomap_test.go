package olmap_test

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap"
)

func TestInfoMapSkipsZeroGeometries(t *testing.T) {
	m := olmap.NewInfoMap("results", 0)
	if m.SRID != geometry.SRIDWGS84 {
		t.Fatalf("expected WGS84 default, got %d", m.SRID)
	}

	m.Add(geometry.Value{}, "<a href='/admin/1/'>one</a>")
	if !m.IsEmpty() {
		t.Fatalf("zero geometry should not add an entry")
	}

	m.Add(geometry.NewValue(orb.Point{1, 2}, geometry.SRIDWGS84), "<a href='/admin/1/'>one</a>")
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}

	html, err := m.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(html, `id="ma-results-map"`) {
		t.Fatalf("expected named container, got: %s", html)
	}
	if !strings.Contains(html, `data-mapadmin-widget="info"`) {
		t.Fatalf("expected info widget marker, got: %s", html)
	}
	if !strings.Contains(html, `&#34;srid&#34;:4326`) {
		t.Fatalf("payload should carry the display srid, got: %s", html)
	}
}

func TestInfoMapEmptyRendersNothing(t *testing.T) {
	m := olmap.NewInfoMap("results", 4326)

	html, err := m.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if html != "" {
		t.Fatalf("empty map should render nothing, got: %s", html)
	}
}

func TestInfoMapSanitizesPopups(t *testing.T) {
	m := olmap.NewInfoMap("results", 4326)
	m.Add(
		geometry.NewValue(orb.Point{1, 2}, geometry.SRIDWGS84),
		`<a href='/admin/districts/1/change/'>Riverside</a><script>alert(1)</script>`,
	)

	entries := m.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	popup := entries[0].PopupHTML
	if strings.Contains(popup, "<script") || strings.Contains(popup, "alert(1)") {
		t.Fatalf("script should be stripped, got: %s", popup)
	}
	if !strings.Contains(popup, `href="/admin/districts/1/change/"`) {
		t.Fatalf("anchor should survive sanitization, got: %s", popup)
	}
	if !strings.Contains(popup, "Riverside") {
		t.Fatalf("label should survive sanitization, got: %s", popup)
	}
}

func TestPopupLinkEscapesLabel(t *testing.T) {
	popup := olmap.PopupLink("/admin/districts/1/change/", `Name <b>bold</b> & "quoted"`)

	if strings.Contains(popup, "<b>") {
		t.Fatalf("label markup should be escaped, got: %s", popup)
	}
	if !strings.Contains(popup, "/admin/districts/1/change/") {
		t.Fatalf("edit url missing, got: %s", popup)
	}
	if !strings.Contains(popup, "&amp;") {
		t.Fatalf("ampersand should stay escaped, got: %s", popup)
	}
}

func TestPopupLinkRejectsUnsafeSchemes(t *testing.T) {
	popup := olmap.PopupLink("javascript:alert(1)", "click")

	if strings.Contains(popup, "javascript:") {
		t.Fatalf("unsafe scheme should be stripped, got: %s", popup)
	}
	if !strings.Contains(popup, "click") {
		t.Fatalf("label text should survive, got: %s", popup)
	}
}

func TestInfoMapMediaMatchesRendererAssets(t *testing.T) {
	m := olmap.NewInfoMap("results", 4326)
	media := m.Media()

	if len(media.Stylesheets) != 2 || len(media.Scripts) != 2 {
		t.Fatalf("unexpected media set: %+v", media)
	}
	if !strings.Contains(media.Scripts[0].Src, "ol.js") {
		t.Fatalf("expected the OpenLayers build, got: %+v", media.Scripts)
	}
	if !media.Scripts[1].Defer {
		t.Fatalf("widget runtime should defer")
	}
}
