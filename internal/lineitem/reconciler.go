package lineitem

import "github.com/shopspring/decimal"

// priceTolerance absorbs rounding drift between sources: two lines whose
// unit prices differ by less than 0.02 (absolute) still count as the same.
var priceTolerance = decimal.NewFromFloat(0.02)

// Identity is the comparable view of a line used during reconciliation.
type Identity struct {
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
}

// Match pairs an incoming line with one of the previous snapshot's lines.
// It returns the index of the first previous line whose normalized
// (description, unit) key matches exactly and whose unit price is within
// tolerance. When no key match exists and positionalIndex is within bounds,
// that index is returned as a best-effort fallback (wording changed but
// ordering did not). A positionalIndex < 0 disables the fallback. The second
// return value reports whether any match was found.
func Match(incoming Identity, previous []Identity, positionalIndex int) (int, bool) {
	key := NormalizeKey(incoming.Description, incoming.Unit)
	for i, candidate := range previous {
		if NormalizeKey(candidate.Description, candidate.Unit) != key {
			continue
		}
		if incoming.UnitPrice.Sub(candidate.UnitPrice).Abs().LessThan(priceTolerance) {
			return i, true
		}
	}
	if positionalIndex >= 0 && positionalIndex < len(previous) {
		return positionalIndex, true
	}
	return -1, false
}
