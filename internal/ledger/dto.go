package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// TransactionDTO is the read model for one ledger entry.
type TransactionDTO struct {
	ID                     uuid.UUID             `json:"id"`
	ProductID              uuid.UUID             `json:"product_id"`
	ProductName            *string               `json:"product_name,omitempty"`
	TransactionType        enums.TransactionType `json:"transaction_type"`
	TransactionTypeDisplay string                `json:"transaction_type_display"`
	Quantity               int                   `json:"quantity"`
	PreviousQuantity       int                   `json:"previous_quantity"`
	NewQuantity            int                   `json:"new_quantity"`
	Reason                 *string               `json:"reason,omitempty"`
	Note                   *string               `json:"note,omitempty"`
	UserID                 *uuid.UUID            `json:"user_id,omitempty"`
	UserName               *string               `json:"user_name,omitempty"`
	TransactionDate        time.Time             `json:"transaction_date"`
	CreatedAt              time.Time             `json:"created_at"`
}

// NewTransactionDTO maps a ledger row to its read model. Shared with the
// reporting queries.
func NewTransactionDTO(txn *models.InventoryTransaction) *TransactionDTO {
	return toTransactionDTO(txn)
}

func toTransactionDTO(txn *models.InventoryTransaction) *TransactionDTO {
	if txn == nil {
		return nil
	}
	dto := &TransactionDTO{
		ID:                     txn.ID,
		ProductID:              txn.ProductID,
		TransactionType:        txn.Type,
		TransactionTypeDisplay: txn.Type.Display(),
		Quantity:               txn.Quantity,
		PreviousQuantity:       txn.PreviousQuantity,
		NewQuantity:            txn.PreviousQuantity + txn.Type.SignedDelta(txn.Quantity),
		Reason:                 txn.Reason,
		Note:                   txn.Note,
		UserID:                 txn.UserID,
		TransactionDate:        txn.TransactionDate,
		CreatedAt:              txn.CreatedAt,
	}
	if txn.Product != nil {
		name := txn.Product.Name
		dto.ProductName = &name
	}
	if txn.User != nil {
		display := txn.User.DisplayName()
		dto.UserName = &display
	}
	return dto
}
