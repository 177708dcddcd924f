// Package template defines the engine-agnostic template contract renderers
// build on. The gotemplate subpackage provides the pongo2-backed default
// implementation used by the HTML renderers and the admin views.
package template
