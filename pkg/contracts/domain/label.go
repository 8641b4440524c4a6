package domain

import (
	"fmt"
)

// LabelKind discriminates the two ways a label column can be populated.
type LabelKind string

const (
	// LabelFixed assigns one literal value to every row.
	LabelFixed LabelKind = "fixed"

	// LabelDerived builds each row's value by joining existing metadata
	// column values with a separator.
	LabelDerived LabelKind = "derived"
)

// DefaultLabelSeparator joins column values for derived labels unless the
// caller picks another separator.
const DefaultLabelSeparator = ","

// LabelSpec describes how to populate a user-attached label column. Exactly
// one of the two variants must be set; Validate enforces this before the
// experiment resolves the spec against its tables.
type LabelSpec struct {
	Kind      LabelKind `json:"kind" validate:"required,oneof=fixed derived"`
	Value     string    `json:"value,omitempty"`
	Columns   []string  `json:"columns,omitempty"`
	Separator string    `json:"separator,omitempty"`
}

// FixedLabel builds a LabelSpec assigning value to every row.
func FixedLabel(value string) LabelSpec {
	return LabelSpec{Kind: LabelFixed, Value: value}
}

// DerivedLabel builds a LabelSpec joining the given metadata columns in
// order. An empty separator selects DefaultLabelSeparator.
func DerivedLabel(separator string, columns ...string) LabelSpec {
	if separator == "" {
		separator = DefaultLabelSeparator
	}
	return LabelSpec{Kind: LabelDerived, Columns: columns, Separator: separator}
}

// Validate checks that the spec selects exactly one variant and that the
// selected variant is complete.
func (s LabelSpec) Validate() error {
	switch s.Kind {
	case LabelFixed:
		if len(s.Columns) > 0 {
			return fmt.Errorf("fixed label must not name source columns")
		}
		if s.Value == "" {
			return fmt.Errorf("fixed label needs a value")
		}
	case LabelDerived:
		if s.Value != "" {
			return fmt.Errorf("derived label must not carry a fixed value")
		}
		if len(s.Columns) == 0 {
			return fmt.Errorf("derived label needs at least one source column")
		}
	default:
		return fmt.Errorf("label kind must be %q or %q, got %q", LabelFixed, LabelDerived, s.Kind)
	}
	return nil
}
