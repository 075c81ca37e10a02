package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

// ContractLine is one ordered line of a contract. Title/subtitle lines are
// presentational separators: all numeric columns stay zero for them.
type ContractLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractID  uuid.UUID       `gorm:"column:contract_id;type:uuid;not null" json:"contract_id"`
	Position    int             `gorm:"column:position;not null" json:"position"`
	Kind        enums.LineKind  `gorm:"column:kind;type:text;not null;default:'normal'" json:"kind"`
	ArticleCode *string         `gorm:"column:article_code" json:"article_code,omitempty"`
	Description string          `gorm:"column:description;not null" json:"description"`
	Unit        string          `gorm:"column:unit;not null;default:''" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0" json:"unit_price"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null;default:0" json:"quantity"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null;default:0" json:"total"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
