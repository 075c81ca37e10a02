package progress

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/internal/lineitem"
	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// firstLineFromContract seeds a snapshot line from a contract base line for
// the very first snapshot of a track: the line exists but nothing has been
// executed yet, so every triple opens at zero. Title/subtitle lines are
// copied as-is with all numerics zero.
func firstLineFromContract(cl models.ContractLine) models.ProgressLine {
	line := models.ProgressLine{
		Position:    cl.Position,
		Kind:        cl.Kind,
		ArticleCode: cl.ArticleCode,
		Description: cl.Description,
		Unit:        cl.Unit,
	}
	if !cl.Kind.IsHeading() {
		line.UnitPrice = cl.UnitPrice
	}
	return line
}

// nextLineFromPrevious carries a matched line into the next snapshot: the
// new snapshot opens with the prior cumulative total as its previous value
// and zero fresh progress, which the user then edits.
func nextLineFromPrevious(prev models.ProgressLine) models.ProgressLine {
	line := models.ProgressLine{
		Position:    prev.Position,
		Kind:        prev.Kind,
		ArticleCode: prev.ArticleCode,
		Description: prev.Description,
		Unit:        prev.Unit,
	}
	if prev.Kind.IsHeading() {
		return line
	}
	line.UnitPrice = prev.UnitPrice
	line.PreviousQty = prev.TotalQty
	line.TotalQty = prev.TotalQty
	line.PreviousAmount = prev.TotalAmount
	line.TotalAmount = prev.TotalAmount
	return line
}

// nextAmendmentFromPrevious carries an amendment forward exactly like a line.
func nextAmendmentFromPrevious(prev models.Amendment) models.Amendment {
	return models.Amendment{
		Description:    prev.Description,
		PreviousQty:    prev.TotalQty,
		TotalQty:       prev.TotalQty,
		PreviousAmount: prev.TotalAmount,
		TotalAmount:    prev.TotalAmount,
		SourceQuoteID:  prev.SourceQuoteID,
	}
}

// lineFromInput materializes a staged line. Caller-supplied current values
// are authoritative; previous values fall back to the reconciled previous
// line's cumulative totals (zero when the line has no history). Totals are
// always enforced to previous + current.
func lineFromInput(in LineInput, previous []models.ProgressLine) models.ProgressLine {
	line := models.ProgressLine{
		Position:    in.Position,
		Kind:        in.Kind,
		ArticleCode: in.ArticleCode,
		Description: in.Description,
		Unit:        in.Unit,
	}
	if in.Kind.IsHeading() {
		return line
	}
	line.UnitPrice = in.UnitPrice

	prevQty := decimal.Zero
	prevAmount := decimal.Zero
	if in.PreviousQty != nil {
		prevQty = *in.PreviousQty
	}
	if in.PreviousAmount != nil {
		prevAmount = *in.PreviousAmount
	}
	if in.PreviousQty == nil || in.PreviousAmount == nil {
		if matched, ok := reconcileAgainst(in, previous); ok {
			if in.PreviousQty == nil {
				prevQty = matched.TotalQty
			}
			if in.PreviousAmount == nil {
				prevAmount = matched.TotalAmount
			}
		}
	}

	currentAmount := in.UnitPrice.Mul(in.CurrentQty).Round(2)
	if in.CurrentAmount != nil {
		currentAmount = *in.CurrentAmount
	}

	line.PreviousQty = prevQty
	line.CurrentQty = in.CurrentQty
	line.TotalQty = prevQty.Add(in.CurrentQty)
	line.PreviousAmount = prevAmount
	line.CurrentAmount = currentAmount
	line.TotalAmount = prevAmount.Add(currentAmount)
	return line
}

// reconcileAgainst finds the previous snapshot line a staged line continues,
// using the normalized-key/tolerance/positional policy.
func reconcileAgainst(in LineInput, previous []models.ProgressLine) (models.ProgressLine, bool) {
	if len(previous) == 0 {
		return models.ProgressLine{}, false
	}

	candidates := make([]lineitem.Identity, len(previous))
	positional := -1
	for i, prev := range previous {
		candidates[i] = lineitem.Identity{
			Description: prev.Description,
			Unit:        prev.Unit,
			UnitPrice:   prev.UnitPrice,
		}
		if prev.Position == in.Position && !prev.Kind.IsHeading() {
			positional = i
		}
	}

	idx, ok := lineitem.Match(lineitem.Identity{
		Description: in.Description,
		Unit:        in.Unit,
		UnitPrice:   in.UnitPrice,
	}, candidates, positional)
	if !ok || previous[idx].Kind.IsHeading() {
		return models.ProgressLine{}, false
	}
	return previous[idx], true
}

// amendmentFromInput materializes a staged amendment, enforcing the
// previous + current invariant on both triples.
func amendmentFromInput(in AmendmentInput) models.Amendment {
	return models.Amendment{
		Description:    in.Description,
		PreviousQty:    in.PreviousQty,
		CurrentQty:     in.CurrentQty,
		TotalQty:       in.PreviousQty.Add(in.CurrentQty),
		PreviousAmount: in.PreviousAmount,
		CurrentAmount:  in.CurrentAmount,
		TotalAmount:    in.PreviousAmount.Add(in.CurrentAmount),
		SourceQuoteID:  in.SourceQuoteID,
	}
}

// lumpSumAmendment builds the integration shape for a converted amendment
// quote: a single unit executed in full in the current snapshot.
func lumpSumAmendment(description string, amountHT decimal.Decimal, sourceQuoteID *uuid.UUID) models.Amendment {
	return models.Amendment{
		Description:   description,
		CurrentQty:    decimal.NewFromInt(1),
		TotalQty:      decimal.NewFromInt(1),
		CurrentAmount: amountHT,
		TotalAmount:   amountHT,
		SourceQuoteID: sourceQuoteID,
	}
}
