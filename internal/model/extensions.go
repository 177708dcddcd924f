package model

// ParseUIExtensions extracts metadata and UI hints from the x-mapadmin
// extension namespace. It returns nil maps when no supported metadata is
// found.
func ParseUIExtensions(ext map[string]any) (map[string]string, map[string]string) {
	metadata := metadataFromExtensions(ext)
	uiHints := filterUIHints(metadata)
	uiHints = mergeUIHints(uiHints, mapHintsFromExtensions(ext))
	return metadata, uiHints
}
