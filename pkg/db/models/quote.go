package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// Quote (devis) is a pre-contract priced proposal. Once accepted it is
// consumed exactly once by the conversion engine, which either materializes
// a new contract (base quote) or an amendment on the open snapshot of the
// site's main contract (amendment quote).
type Quote struct {
	ID                       uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number                   string            `gorm:"column:number;not null" json:"number"`
	Type                     enums.QuoteType   `gorm:"column:type;type:text;not null;default:'base'" json:"type"`
	Status                   enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	ClientName               string            `gorm:"column:client_name;not null" json:"client_name"`
	SiteID                   *uuid.UUID        `gorm:"column:site_id;type:uuid" json:"site_id,omitempty"`
	GlobalDiscountPct        decimal.Decimal   `gorm:"column:global_discount_pct;type:numeric(5,2);not null;default:0" json:"global_discount_pct"`
	Lines                    []QuoteLine       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	AcceptedAt               *time.Time        `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	ConvertedAt              *time.Time        `gorm:"column:converted_at" json:"converted_at,omitempty"`
	ConvertedContractID      *uuid.UUID        `gorm:"column:converted_contract_id;type:uuid" json:"converted_contract_id,omitempty"`
	ConvertedProgressStateID *uuid.UUID        `gorm:"column:converted_progress_state_id;type:uuid" json:"converted_progress_state_id,omitempty"`
	CreatedAt                time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
