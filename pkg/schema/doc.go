// Package schema defines the contracts for loading and parsing the OpenAPI
// documents that describe admin resources. Loaders fetch raw documents from
// files, fs.FS bundles, or HTTP; parsers normalise them into Operation and
// Schema wrappers so the rest of the module never touches kin-openapi types
// directly. Map-specific configuration travels in the x-mapadmin extension
// namespace and is preserved verbatim on the wrappers for the model builder to
// lift. Implementations live under internal/schema; the root mapadmin package
// exposes the construction helpers.
package schema
