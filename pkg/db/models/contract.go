package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract is the priced line-item agreement (commande) progress snapshots
// are measured against. A nil SubcontractorID means the main (client-facing)
// contract. Contracts are immutable once created except for the locking flag
// that gates snapshot creation.
type Contract struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID          uuid.UUID      `gorm:"column:site_id;type:uuid;not null" json:"site_id"`
	SubcontractorID *uuid.UUID     `gorm:"column:subcontractor_id;type:uuid" json:"subcontractor_id,omitempty"`
	Reference       string         `gorm:"column:reference;not null" json:"reference"`
	Locked          bool           `gorm:"column:locked;not null;default:false" json:"locked"`
	LockedAt        *time.Time     `gorm:"column:locked_at" json:"locked_at,omitempty"`
	SourceQuoteID   *uuid.UUID     `gorm:"column:source_quote_id;type:uuid" json:"source_quote_id,omitempty"`
	Lines           []ContractLine `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
