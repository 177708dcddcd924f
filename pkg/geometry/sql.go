package geometry

import (
	"database/sql/driver"
	"fmt"
)

// Value implements driver.Valuer, encoding the geometry as EWKT text. Zero
// values store as NULL.
func (v Value) Value() (driver.Value, error) {
	if v.IsZero() {
		return nil, nil
	}
	text, err := EncodeEWKT(v)
	if err != nil {
		return nil, err
	}
	return text, nil
}

// Scan implements sql.Scanner, accepting EWKT or plain WKT in text or byte
// form. NULL scans into the zero value.
func (v *Value) Scan(src any) error {
	if v == nil {
		return fmt.Errorf("geometry: scan into nil value")
	}
	switch payload := src.(type) {
	case nil:
		*v = Value{}
		return nil
	case string:
		return v.scanText(payload)
	case []byte:
		return v.scanText(string(payload))
	default:
		return fmt.Errorf("geometry: cannot scan %T into geometry value", src)
	}
}

func (v *Value) scanText(text string) error {
	if text == "" {
		*v = Value{}
		return nil
	}
	parsed, err := ParseEWKT(text)
	if err != nil {
		return fmt.Errorf("geometry: scan column: %w", err)
	}
	*v = parsed
	return nil
}
