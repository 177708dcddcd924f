package model

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-mapadmin/pkg/schema"
)

var (
	errOperationIDMissing     = errors.New("model builder: operation id is required")
	errOperationPathMissing   = errors.New("model builder: operation path is required")
	errOperationMethodMissing = errors.New("model builder: operation method is required")
)

func validateOperation(op schema.Operation) error {
	if op.ID == "" {
		return errOperationIDMissing
	}
	if op.Path == "" {
		return errOperationPathMissing
	}
	if op.Method == "" {
		return errOperationMethodMissing
	}
	if err := validateSchema(op.RequestBody); err != nil {
		return fmt.Errorf("model builder: invalid request body: %w", err)
	}
	return nil
}

func validateSchema(s schema.Schema) error {
	if s.Type == "array" && s.Items == nil {
		return errors.New("array schema requires items")
	}
	if s.Type == "object" {
		for _, nested := range s.Properties {
			if err := validateSchema(nested); err != nil {
				return err
			}
		}
	}
	if s.Items != nil {
		return validateSchema(*s.Items)
	}
	return nil
}
