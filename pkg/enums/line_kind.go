package enums

import "fmt"

// LineKind distinguishes priced lines from presentational separators.
// Title and subtitle lines carry no quantity or price and are excluded
// from every numeric aggregation.
type LineKind string

const (
	LineKindNormal   LineKind = "normal"
	LineKindTitle    LineKind = "title"
	LineKindSubtitle LineKind = "subtitle"
)

var validLineKinds = []LineKind{
	LineKindNormal,
	LineKindTitle,
	LineKindSubtitle,
}

// String implements fmt.Stringer.
func (k LineKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LineKind.
func (k LineKind) IsValid() bool {
	for _, candidate := range validLineKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsHeading reports whether the line is a title or subtitle separator.
func (k LineKind) IsHeading() bool {
	return k == LineKindTitle || k == LineKindSubtitle
}

// ParseLineKind converts raw input into a LineKind.
func ParseLineKind(value string) (LineKind, error) {
	for _, candidate := range validLineKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line kind %q", value)
}
