package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// QuoteLine is one ordered line of a quote. LineDiscountPct applies to the
// line itself before any global discount redistribution.
type QuoteLine struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteID         uuid.UUID       `gorm:"column:quote_id;type:uuid;not null" json:"quote_id"`
	Position        int             `gorm:"column:position;not null" json:"position"`
	Kind            enums.LineKind  `gorm:"column:kind;type:text;not null;default:'normal'" json:"kind"`
	Description     string          `gorm:"column:description;not null" json:"description"`
	Unit            string          `gorm:"column:unit;not null;default:''" json:"unit"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0" json:"unit_price"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null;default:0" json:"quantity"`
	LineDiscountPct decimal.Decimal `gorm:"column:line_discount_pct;type:numeric(5,2);not null;default:0" json:"line_discount_pct"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null;default:0" json:"total"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
