package mapcfg

import (
	"embed"
	"io/fs"
)

//go:embed config/*
var embeddedConfig embed.FS

// EmbeddedFS returns the bundled default map configuration. Callers may pass
// this filesystem to LoadFS to use the stock defaults.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedConfig, "config")
	if err != nil {
		// The embed directive guarantees the subpath exists, so panic is
		// acceptable here.
		panic(err)
	}
	return sub
}
