package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// ProgressLine mirrors a contract line inside one progress snapshot and
// accumulates execution as previous/current/total triples. Invariants:
// TotalQty = PreviousQty + CurrentQty and TotalAmount = PreviousAmount +
// CurrentAmount at all times.
type ProgressLine struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProgressStateID uuid.UUID       `gorm:"column:progress_state_id;type:uuid;not null" json:"progress_state_id"`
	Position        int             `gorm:"column:position;not null" json:"position"`
	Kind            enums.LineKind  `gorm:"column:kind;type:text;not null;default:'normal'" json:"kind"`
	ArticleCode     *string         `gorm:"column:article_code" json:"article_code,omitempty"`
	Description     string          `gorm:"column:description;not null" json:"description"`
	Unit            string          `gorm:"column:unit;not null;default:''" json:"unit"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0" json:"unit_price"`
	PreviousQty     decimal.Decimal `gorm:"column:previous_qty;type:numeric(14,3);not null;default:0" json:"previous_qty"`
	CurrentQty      decimal.Decimal `gorm:"column:current_qty;type:numeric(14,3);not null;default:0" json:"current_qty"`
	TotalQty        decimal.Decimal `gorm:"column:total_qty;type:numeric(14,3);not null;default:0" json:"total_qty"`
	PreviousAmount  decimal.Decimal `gorm:"column:previous_amount;type:numeric(14,2);not null;default:0" json:"previous_amount"`
	CurrentAmount   decimal.Decimal `gorm:"column:current_amount;type:numeric(14,2);not null;default:0" json:"current_amount"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null;default:0" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
