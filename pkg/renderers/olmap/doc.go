// Package olmap renders admin edit forms and list-view maps as HTML backed by
// OpenLayers. Geometry fields become interactive map widgets bound to a
// textarea carrying the serialised geometry; every other field renders through
// a pluggable component registry. The package embeds its template and asset
// bundles so output works without external wiring, while options expose every
// layer (templates, components, stylesheets) for customisation.
package olmap
