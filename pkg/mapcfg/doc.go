// Package mapcfg loads and applies map-option overlays that enrich admin
// resources with widget configuration, geometry field grouping, and
// changelist map settings. The package keeps the model builder unaware of
// deployment configuration while providing a decorator that orchestrator
// callers can opt into.
package mapcfg
