package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is a quote line with all discounts applied: the line's own
// discount first, then its proportional share of the global discount.
// NetUnitPrice times Quantity reproduces NetTotal up to rounding.
type PricedLine struct {
	Position     int
	Line         models.QuoteLine
	NetUnitPrice decimal.Decimal
	NetTotal     decimal.Decimal
}

// lineNetOfOwnDiscount is the line total after its own discount, before any
// global redistribution.
func lineNetOfOwnDiscount(line models.QuoteLine) decimal.Decimal {
	gross := line.UnitPrice.Mul(line.Quantity)
	factor := decimal.NewFromInt(1).Sub(line.LineDiscountPct.Div(hundred))
	return gross.Mul(factor).Round(2)
}

// PriceLines applies the full discount cascade to a quote's lines. The
// global discount is redistributed across normal lines in proportion to
// their adjusted totals, so the discounted unit prices survive conversion
// into contract lines without a separate discount row. Rounding remainders
// land on the last normal line, keeping the sum exact. Title and subtitle
// lines pass through untouched with zero amounts.
func PriceLines(lines []models.QuoteLine, globalDiscountPct decimal.Decimal) []PricedLine {
	priced := make([]PricedLine, len(lines))
	subtotal := decimal.Zero
	lastNormal := -1
	for i, line := range lines {
		priced[i] = PricedLine{Position: line.Position, Line: line}
		if line.Kind.IsHeading() {
			continue
		}
		adjusted := lineNetOfOwnDiscount(line)
		priced[i].NetTotal = adjusted
		subtotal = subtotal.Add(adjusted)
		lastNormal = i
	}

	globalAmount := subtotal.Mul(globalDiscountPct).Div(hundred).Round(2)
	if globalAmount.IsPositive() && subtotal.IsPositive() {
		distributed := decimal.Zero
		for i := range priced {
			if priced[i].Line.Kind.IsHeading() {
				continue
			}
			share := globalAmount.Mul(priced[i].NetTotal).Div(subtotal).Round(2)
			if i == lastNormal {
				share = globalAmount.Sub(distributed)
			}
			priced[i].NetTotal = priced[i].NetTotal.Sub(share)
			distributed = distributed.Add(share)
		}
	}

	for i := range priced {
		line := priced[i].Line
		if line.Kind.IsHeading() {
			continue
		}
		if line.Quantity.IsZero() {
			priced[i].NetUnitPrice = decimal.Zero
			continue
		}
		priced[i].NetUnitPrice = priced[i].NetTotal.Div(line.Quantity).Round(2)
	}
	return priced
}

// TotalHT sums the net totals of priced lines.
func TotalHT(priced []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range priced {
		if line.Line.Kind.IsHeading() {
			continue
		}
		total = total.Add(line.NetTotal)
	}
	return total
}
