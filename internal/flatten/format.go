// Package flatten projects nested intake templates into flat 12-column grid rows.
package flatten

import (
	"strings"

	"github.com/intakegrid/intakegrid/pkg/types"
)

// FormatValidation normalizes a validation value into a display string.
// Strings pass through unchanged, a bare number becomes a max_length
// constraint, and a mapping renders as "key: value" pairs in declaration
// order. Anything else renders empty.
func FormatValidation(v types.Value) string {
	switch v.Kind {
	case types.KindString:
		return v.Str
	case types.KindNumber:
		return "max_length: " + v.Num
	case types.KindMapping:
		parts := make([]string, 0, len(v.Map))
		for _, e := range v.Map {
			parts = append(parts, e.Key+": "+e.Value.Scalar())
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// FormatMapsTo normalizes a maps_to value: a sequence of target paths joins
// with ", ", a scalar renders as-is, null renders empty.
func FormatMapsTo(v types.Value) string {
	switch v.Kind {
	case types.KindNull:
		return ""
	case types.KindSequence:
		parts := make([]string, 0, len(v.Seq))
		for _, e := range v.Seq {
			parts = append(parts, e.Scalar())
		}
		return strings.Join(parts, ", ")
	default:
		return v.Scalar()
	}
}

// FormatExamples normalizes an examples value: a sequence joins with " | ",
// a scalar renders as-is, null renders empty.
func FormatExamples(v types.Value) string {
	switch v.Kind {
	case types.KindNull:
		return ""
	case types.KindSequence:
		parts := make([]string, 0, len(v.Seq))
		for _, e := range v.Seq {
			parts = append(parts, e.Scalar())
		}
		return strings.Join(parts, " | ")
	default:
		return v.Scalar()
	}
}

// FormatOptions normalizes an options value. A sequence joins with " | ";
// {value,label} record elements render their value when it is non-empty,
// else their label. Non-sequence shapes render empty.
func FormatOptions(v types.Value) string {
	if v.Kind != types.KindSequence {
		return ""
	}
	parts := make([]string, 0, len(v.Seq))
	for _, e := range v.Seq {
		parts = append(parts, formatOption(e))
	}
	return strings.Join(parts, " | ")
}

// formatOption renders one options element.
func formatOption(v types.Value) string {
	if v.Kind == types.KindMapping {
		if val, ok := v.Lookup("value"); ok && val.Scalar() != "" {
			return val.Scalar()
		}
		if label, ok := v.Lookup("label"); ok {
			return label.Scalar()
		}
		return ""
	}
	return v.Scalar()
}
