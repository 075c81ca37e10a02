package lineitem

import (
	"testing"

	"github.com/shopspring/decimal"
)

func identity(description, unit string, price float64) Identity {
	return Identity{
		Description: description,
		Unit:        unit,
		UnitPrice:   decimal.NewFromFloat(price),
	}
}

func TestMatch_NormalizedKeyWithTolerance(t *testing.T) {
	previous := []Identity{
		identity("Peinture murs", "m2", 12.50),
		identity("Carrelage  sol", "m2", 45.00),
	}

	idx, ok := Match(identity("carrelage sol", "M2", 45.01), previous, -1)
	if !ok || idx != 1 {
		t.Fatalf("expected match at index 1, got idx=%d ok=%v", idx, ok)
	}
}

func TestMatch_PriceOutsideTolerance(t *testing.T) {
	previous := []Identity{
		identity("Carrelage sol", "m2", 46.00),
	}

	if idx, ok := Match(identity("carrelage sol", "m2", 45.00), previous, -1); ok {
		t.Fatalf("expected no match, got index %d", idx)
	}
}

func TestMatch_ToleranceBoundaryIsExclusive(t *testing.T) {
	previous := []Identity{
		identity("Enduit", "m2", 45.02),
	}

	// Exactly 0.02 apart: the tolerance is a strict less-than.
	if _, ok := Match(identity("Enduit", "m2", 45.00), previous, -1); ok {
		t.Fatal("a difference of exactly 0.02 must not match")
	}
}

func TestMatch_PositionalFallback(t *testing.T) {
	previous := []Identity{
		identity("Pose cloisons", "m2", 30.00),
		identity("Faux plafond", "m2", 28.00),
	}

	// Reworded line, same position.
	idx, ok := Match(identity("Plafond suspendu", "m2", 28.00), previous, 1)
	if !ok || idx != 1 {
		t.Fatalf("expected positional fallback to index 1, got idx=%d ok=%v", idx, ok)
	}
}

func TestMatch_PositionalFallbackOutOfBounds(t *testing.T) {
	previous := []Identity{
		identity("Pose cloisons", "m2", 30.00),
	}

	if idx, ok := Match(identity("Ligne nouvelle", "u", 100.00), previous, 4); ok {
		t.Fatalf("expected no match for out-of-bounds fallback, got index %d", idx)
	}
}

func TestMatch_KeyMatchWinsOverPosition(t *testing.T) {
	previous := []Identity{
		identity("Faux plafond", "m2", 28.00),
		identity("Pose cloisons", "m2", 30.00),
	}

	idx, ok := Match(identity("pose  CLOISONS", "M2", 30.01), previous, 0)
	if !ok || idx != 1 {
		t.Fatalf("expected key match at index 1 to beat positional 0, got idx=%d ok=%v", idx, ok)
	}
}
