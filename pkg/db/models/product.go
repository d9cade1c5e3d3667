package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry plus its cached on-hand count.
//
// CurrentQuantity is derived state: it must equal the net sum of the signed
// deltas of the product's transactions, and the ledger engine's apply step is
// the only write path for it after creation.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Description     *string         `gorm:"column:description"`
	SKU             string          `gorm:"column:sku;not null;uniqueIndex:idx_products_sku"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CostPrice       decimal.Decimal `gorm:"column:cost_price;type:numeric(10,2);not null"`
	CurrentQuantity int             `gorm:"column:current_quantity;not null;default:0"`
	MinQuantity     int             `gorm:"column:min_quantity;not null;default:0"`
	CategoryID      *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Category        *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	ImageKey        *string         `gorm:"column:image_key"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Transactions []InventoryTransaction `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
