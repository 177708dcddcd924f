// Package forms reshapes resource fields for map-backed editing. Several
// geometry fields that declare the same Metadata["group"] collapse into one
// synthetic field drawn on a shared map; the Keymap produced by the collapse
// records which original fields feed each synthetic one so form data can be
// translated in both directions: BindInitial gathers per-field initial values
// into the ordered slice the widget consumes, and ExtractCleaned splits the
// widget's submitted slice back into the original per-field entries. Form
// bundles both directions with geometry parsing for raw submissions.
package forms
