package models

import (
	"time"

	"github.com/google/uuid"
)

// Site represents a construction site (chantier) a contract is attached to.
type Site struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientName string     `gorm:"column:client_name;not null" json:"client_name"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	Address    *string    `gorm:"column:address" json:"address,omitempty"`
	Contracts  []Contract `gorm:"foreignKey:SiteID" json:"-"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
