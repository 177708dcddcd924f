// Package model defines the typed resource model the admin consumes. Builders
// reside in internal/model but return the types defined here. A Resource
// couples the editable fields of one schema operation with the identity
// metadata list pages need: the id field, the display label field, and the
// edit path used when linking popups back to change forms. Geometry-valued
// properties become fields of type "geometry" carrying their kind and SRID in
// Metadata ("geometry.kind", "geometry.srid"); several geometry fields can
// share a map widget by naming the same Metadata["group"]. Validation rules
// expose canonical identifiers (min/max, minLength/maxLength, pattern) with
// string parameters so renderers can map numeric bounds (including exclusive
// limits), textual constraints, and regexes onto HTML attributes or runtime
// validators without sacrificing deterministic JSON snapshots. Schema
// extensions under the `x-mapadmin` namespace flow into `Resource` and
// `Field` metadata while the curated `UIHints` map surfaces renderer-facing
// directives such as `placeholder`, `helpText`, `cssClass`, `inputType`,
// `widget`, and map sizing hints like `mapHeight` and `zoom`.
package model
