package models

import (
	"time"

	"github.com/google/uuid"
)

// Subcontractor identifies a company executing part of a site under its own
// contract and its own progress snapshot track.
type Subcontractor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Siret     *string   `gorm:"column:siret" json:"siret,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
