package quotes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// CreateQuoteInput captures a new quote with its ordered lines.
type CreateQuoteInput struct {
	Number            string          `validate:"required"`
	Type              enums.QuoteType `validate:"required"`
	ClientName        string          `validate:"required"`
	SiteID            *uuid.UUID
	GlobalDiscountPct decimal.Decimal
	Lines             []QuoteLineInput `validate:"required,min=1,dive"`
}

// QuoteLineInput is one staged quote line.
type QuoteLineInput struct {
	Position        int
	Kind            enums.LineKind `validate:"required"`
	Description     string         `validate:"required"`
	Unit            string
	UnitPrice       decimal.Decimal
	Quantity        decimal.Decimal
	LineDiscountPct decimal.Decimal
}

// ConversionResult reports what a conversion produced. ContractID is set for
// base quotes, ProgressStateID for amendment quotes.
type ConversionResult struct {
	Quote           *models.Quote
	ContractID      *uuid.UUID
	ProgressStateID *uuid.UUID
}
