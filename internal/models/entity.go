package models

import (
	"encoding/json"
	"strings"
)

// Entity type names produced by the default extractor
const (
	EntityOrderNumber = "order_number"
	EntityEmail       = "email"
	EntityProductCode = "product_code"
	EntityDate        = "date"
)

// EntityValue holds an extracted value: a single string for patterns with at most one
// capture group, or the ordered group values for patterns with several.
type EntityValue struct {
	scalar string
	parts  []string
}

// Scalar builds a single-string entity value
func Scalar(value string) EntityValue {
	return EntityValue{scalar: value}
}

// Tuple builds a multi-group entity value. Unmatched optional groups are empty strings.
func Tuple(parts ...string) EntityValue {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return EntityValue{parts: cp}
}

// IsTuple reports whether the value came from a multi-group pattern
func (v EntityValue) IsTuple() bool {
	return v.parts != nil
}

// Value returns the scalar value, or the first group of a tuple
func (v EntityValue) Value() string {
	if v.parts != nil {
		if len(v.parts) == 0 {
			return ""
		}
		return v.parts[0]
	}
	return v.scalar
}

// Parts returns the groups of a tuple, or a one-element slice for a scalar
func (v EntityValue) Parts() []string {
	if v.parts != nil {
		cp := make([]string, len(v.parts))
		copy(cp, v.parts)
		return cp
	}
	return []string{v.scalar}
}

// String renders the value for replies. Tuples join their non-empty groups with "/".
func (v EntityValue) String() string {
	if v.parts == nil {
		return v.scalar
	}
	nonEmpty := make([]string, 0, len(v.parts))
	for _, p := range v.parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// MarshalJSON encodes scalars as strings and tuples as arrays
func (v EntityValue) MarshalJSON() ([]byte, error) {
	if v.parts != nil {
		return json.Marshal(v.parts)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON accepts either a string or an array of strings
func (v *EntityValue) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err == nil {
		*v = Tuple(parts...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Scalar(s)
	return nil
}

// Entities maps entity type to its extracted value
type Entities map[string]EntityValue

// Has reports whether an entity of the given type is present
func (e Entities) Has(entityType string) bool {
	_, ok := e[entityType]
	return ok
}

// Clone returns an independent copy
func (e Entities) Clone() Entities {
	out := make(Entities, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
