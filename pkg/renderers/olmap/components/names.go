package components

// Canonical component names used by the olmap renderer and default registry.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameBoolean  = "boolean"
	NameHidden   = "hidden"
	NameObject   = "object"
	NameArray    = "array"
	NameMap      = "map"
	NameInfoMap  = "info-map"
)
