package enums

import "fmt"

// QuoteType tells whether a quote materializes a new contract or an
// amendment to an existing one once accepted.
type QuoteType string

const (
	QuoteTypeBase      QuoteType = "base"
	QuoteTypeAmendment QuoteType = "amendment"
)

var validQuoteTypes = []QuoteType{
	QuoteTypeBase,
	QuoteTypeAmendment,
}

// String implements fmt.Stringer.
func (q QuoteType) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteType.
func (q QuoteType) IsValid() bool {
	for _, candidate := range validQuoteTypes {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteType converts raw input into a QuoteType.
func ParseQuoteType(value string) (QuoteType, error) {
	for _, candidate := range validQuoteTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote type %q", value)
}
