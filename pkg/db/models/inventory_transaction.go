package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// InventoryTransaction is one immutable entry in the stock-movement ledger.
//
// PreviousQuantity snapshots the product's on-hand count immediately before
// the entry was applied; it is set by the ledger engine, never by callers.
// Rows are deleted only as a cascade of product deletion.
type InventoryTransaction struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index:idx_transactions_product"`
	Product          *Product              `gorm:"foreignKey:ProductID"`
	Type             enums.TransactionType `gorm:"column:transaction_type;type:transaction_type_enum;not null"`
	Quantity         int                   `gorm:"column:quantity;not null"`
	Reason           *string               `gorm:"column:reason"`
	UserID           *uuid.UUID            `gorm:"column:user_id;type:uuid"`
	User             *User                 `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	TransactionDate  time.Time             `gorm:"column:transaction_date;not null;index:idx_transactions_date"`
	Note             *string               `gorm:"column:note"`
	PreviousQuantity int                   `gorm:"column:previous_quantity;not null"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.TransactionDate.IsZero() {
		t.TransactionDate = time.Now().UTC()
	}
	return nil
}
