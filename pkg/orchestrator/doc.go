// Package orchestrator wires schema loading, parsing, resource building,
// decoration, and rendering into a single Generate call, providing dependency
// injection friendly helpers for consumers that prefer one entry point.
package orchestrator
