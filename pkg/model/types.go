package model

import internalmodel "github.com/goliatone/go-mapadmin/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString   = internalmodel.FieldTypeString
	FieldTypeInteger  = internalmodel.FieldTypeInteger
	FieldTypeNumber   = internalmodel.FieldTypeNumber
	FieldTypeBoolean  = internalmodel.FieldTypeBoolean
	FieldTypeArray    = internalmodel.FieldTypeArray
	FieldTypeObject   = internalmodel.FieldTypeObject
	FieldTypeGeometry = internalmodel.FieldTypeGeometry
)

// Metadata keys stamped on geometry fields by the builder.
const (
	MetadataGeometryKind = internalmodel.MetadataGeometryKind
	MetadataGeometrySRID = internalmodel.MetadataGeometrySRID
	MetadataGroup        = internalmodel.MetadataGroup
	MetadataGroupSources = internalmodel.MetadataGroupSources
)

type ValidationRule = internalmodel.ValidationRule
type Field = internalmodel.Field
type Resource = internalmodel.Resource
