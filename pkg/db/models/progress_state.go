package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressState is a numbered, dated checkpoint of cumulative execution
// against a contract (état d'avancement). A nil SubcontractorID means the
// main track. At most one state per (contract, track) may be open
// (finalized = false) at a time, and sequence numbers are dense from 1.
type ProgressState struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractID      uuid.UUID      `gorm:"column:contract_id;type:uuid;not null" json:"contract_id"`
	SubcontractorID *uuid.UUID     `gorm:"column:subcontractor_id;type:uuid" json:"subcontractor_id,omitempty"`
	SequenceNumber  int            `gorm:"column:sequence_number;not null" json:"sequence_number"`
	StateDate       time.Time      `gorm:"column:state_date;not null" json:"state_date"`
	PeriodLabel     *string        `gorm:"column:period_label" json:"period_label,omitempty"`
	Finalized       bool           `gorm:"column:finalized;not null;default:false" json:"finalized"`
	FinalizedAt     *time.Time     `gorm:"column:finalized_at" json:"finalized_at,omitempty"`
	Comments        *string        `gorm:"column:comments" json:"comments,omitempty"`
	Lines           []ProgressLine `gorm:"foreignKey:ProgressStateID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Amendments      []Amendment    `gorm:"foreignKey:ProgressStateID;constraint:OnDelete:CASCADE" json:"amendments,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Track returns the subcontractor id scoping the snapshot sequence, or
// uuid.Nil for the main track.
func (p ProgressState) Track() uuid.UUID {
	if p.SubcontractorID == nil {
		return uuid.Nil
	}
	return *p.SubcontractorID
}
