package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Amendment (avenant) is an out-of-catalog lump-sum addition to a snapshot,
// often originating from a converted amendment quote. It is not tied to a
// contract line but carries forward across snapshots exactly like one.
// Amendments are tracked as single units: quantities are 0/1/1 on creation.
type Amendment struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProgressStateID uuid.UUID       `gorm:"column:progress_state_id;type:uuid;not null" json:"progress_state_id"`
	Description     string          `gorm:"column:description;not null" json:"description"`
	PreviousQty     decimal.Decimal `gorm:"column:previous_qty;type:numeric(14,3);not null;default:0" json:"previous_qty"`
	CurrentQty      decimal.Decimal `gorm:"column:current_qty;type:numeric(14,3);not null;default:0" json:"current_qty"`
	TotalQty        decimal.Decimal `gorm:"column:total_qty;type:numeric(14,3);not null;default:0" json:"total_qty"`
	PreviousAmount  decimal.Decimal `gorm:"column:previous_amount;type:numeric(14,2);not null;default:0" json:"previous_amount"`
	CurrentAmount   decimal.Decimal `gorm:"column:current_amount;type:numeric(14,2);not null;default:0" json:"current_amount"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null;default:0" json:"total_amount"`
	SourceQuoteID   *uuid.UUID      `gorm:"column:source_quote_id;type:uuid" json:"source_quote_id,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
