package render

import "strings"

// Script references a JavaScript asset emitted by a renderer. Defer marks
// scripts that should load with the defer attribute so heavy map libraries do
// not block page parsing.
type Script struct {
	Src   string
	Defer bool
}

// Media collects the stylesheet and script URLs a rendered page depends on.
// Admin pages sum several sets (base chrome plus every map on the page), so
// the merge helpers deduplicate while preserving first-seen order: the first
// occurrence of an asset keeps its position and attributes.
type Media struct {
	Stylesheets []string
	Scripts     []Script
}

// MediaProvider is implemented by renderers that declare the assets their
// output depends on. Registry.CollectMedia and the admin handlers use it to
// assemble page-level media sums.
type MediaProvider interface {
	Media() Media
}

// IsZero reports whether the media set carries no assets.
func (m Media) IsZero() bool {
	return len(m.Stylesheets) == 0 && len(m.Scripts) == 0
}

// Clone returns a deep copy so callers can extend a shared base set without
// mutating it.
func (m Media) Clone() Media {
	out := Media{}
	if len(m.Stylesheets) > 0 {
		out.Stylesheets = append([]string(nil), m.Stylesheets...)
	}
	if len(m.Scripts) > 0 {
		out.Scripts = append([]Script(nil), m.Scripts...)
	}
	return out
}

// AddStylesheet returns a copy of the set with href appended unless it is
// blank or already present.
func (m Media) AddStylesheet(href string) Media {
	return m.Merge(Media{Stylesheets: []string{href}})
}

// AddScript returns a copy of the set with the script appended unless its Src
// is blank or already present.
func (m Media) AddScript(script Script) Media {
	return m.Merge(Media{Scripts: []Script{script}})
}

// Merge returns the union of both sets with m's assets first. Blank URLs are
// dropped and repeated URLs keep their first occurrence.
func (m Media) Merge(other Media) Media {
	var out Media

	seenCSS := make(map[string]struct{}, len(m.Stylesheets)+len(other.Stylesheets))
	addCSS := func(href string) {
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if _, exists := seenCSS[href]; exists {
			return
		}
		seenCSS[href] = struct{}{}
		out.Stylesheets = append(out.Stylesheets, href)
	}
	for _, href := range m.Stylesheets {
		addCSS(href)
	}
	for _, href := range other.Stylesheets {
		addCSS(href)
	}

	seenJS := make(map[string]struct{}, len(m.Scripts)+len(other.Scripts))
	addJS := func(script Script) {
		script.Src = strings.TrimSpace(script.Src)
		if script.Src == "" {
			return
		}
		if _, exists := seenJS[script.Src]; exists {
			return
		}
		seenJS[script.Src] = struct{}{}
		out.Scripts = append(out.Scripts, script)
	}
	for _, script := range m.Scripts {
		addJS(script)
	}
	for _, script := range other.Scripts {
		addJS(script)
	}

	return out
}

// MergeMedia folds the given sets left to right.
func MergeMedia(parts ...Media) Media {
	var out Media
	for _, part := range parts {
		out = out.Merge(part)
	}
	return out
}
