// Package lineitem provides the identity heuristics used to pair line items
// across snapshots. Lines arrive from three different sources over a
// contract's life (the original contract, the prior snapshot, a freshly
// edited form) with no stable cross-source identifier, so matching relies on
// a normalized (description, unit) key plus a small unit-price tolerance,
// with a positional fallback.
package lineitem

import "strings"

// Key is the canonical identity of a line item.
type Key struct {
	Description string
	Unit        string
}

// NormalizeKey canonicalizes a line's description and unit: trim, lowercase,
// collapse internal whitespace runs to a single space. Pure function.
func NormalizeKey(description, unit string) Key {
	return Key{
		Description: normalizeText(description),
		Unit:        normalizeText(unit),
	}
}

func normalizeText(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
