package mapadmin

import (
	"embed"
	"io/fs"
)

//go:embed pkg/renderers/olmap/assets/*.js pkg/renderers/olmap/assets/*.css
var embeddedRuntimeAssets embed.FS

// RuntimeAssetsFS exposes the prebuilt browser runtime (committed under
// pkg/renderers/olmap/assets) so Go applications can serve the map widget
// script and stylesheet without an npm build step.
//
// Typical mount, matching the hrefs the rendered media block emits:
//
//	mux.Handle("/assets/mapadmin/",
//	  http.StripPrefix("/assets/mapadmin/",
//	    http.FileServerFS(mapadmin.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "pkg/renderers/olmap/assets")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
