package olmap

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "mapadmin-form"
	ClassHeader   ChromeClass = "mapadmin-header"
	ClassSection  ChromeClass = "mapadmin-section"
	ClassFieldset ChromeClass = "mapadmin-fieldset"
	ClassActions  ChromeClass = "mapadmin-actions"
	ClassErrors   ChromeClass = "mapadmin-errors"
	ClassGrid     ChromeClass = "mapadmin-grid"
)

// Default*Class values are applied when RenderOptions.ChromeClasses overrides
// are empty.
const (
	DefaultFormClass     = string(ClassForm)
	DefaultHeaderClass   = string(ClassHeader)
	DefaultSectionClass  = string(ClassSection)
	DefaultFieldsetClass = string(ClassFieldset)
	DefaultActionsClass  = string(ClassActions)
	DefaultErrorsClass   = string(ClassErrors)
	DefaultGridClass     = string(ClassGrid)
)
