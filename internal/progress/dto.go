package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// CreateStateInput captures everything needed to open the next snapshot of a
// (contract, track) pair. Lines and Amendments are optional staged payloads;
// when absent the snapshot is populated from the contract's base lines
// (first snapshot) or carried forward from the previous snapshot.
type CreateStateInput struct {
	ContractID      uuid.UUID
	SubcontractorID *uuid.UUID
	StateDate       time.Time
	PeriodLabel     *string
	Comments        *string
	Lines           []LineInput
	Amendments      []AmendmentInput
}

// LineInput is one staged snapshot line. Current values are authoritative
// when provided. Previous values may be omitted, in which case they are
// derived by reconciling the line against the previous snapshot.
type LineInput struct {
	Position       int
	Kind           enums.LineKind
	ArticleCode    *string
	Description    string
	Unit           string
	UnitPrice      decimal.Decimal
	PreviousQty    *decimal.Decimal
	CurrentQty     decimal.Decimal
	PreviousAmount *decimal.Decimal
	CurrentAmount  *decimal.Decimal
}

// AmendmentInput is one staged snapshot amendment.
type AmendmentInput struct {
	Description    string
	PreviousQty    decimal.Decimal
	CurrentQty     decimal.Decimal
	PreviousAmount decimal.Decimal
	CurrentAmount  decimal.Decimal
	SourceQuoteID  *uuid.UUID
}

// IntegrateAmendmentInput adds a lump-sum amendment to the open snapshot of
// the target track, creating the snapshot first when none is open.
type IntegrateAmendmentInput struct {
	ContractID      uuid.UUID
	SubcontractorID *uuid.UUID
	Description     string
	AmountHT        decimal.Decimal
	SourceQuoteID   *uuid.UUID
}

// UpdateLineInput edits an open snapshot line. Nil fields are left untouched.
// When CurrentQty changes without an explicit CurrentAmount, the amount is
// recomputed as quantity times unit price.
type UpdateLineInput struct {
	CurrentQty    *decimal.Decimal
	CurrentAmount *decimal.Decimal
}

// UpdateAmendmentInput edits an open snapshot amendment.
type UpdateAmendmentInput struct {
	CurrentAmount *decimal.Decimal
}
