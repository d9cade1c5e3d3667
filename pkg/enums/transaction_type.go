package enums

import "fmt"

// TransactionType maps to the transaction_type_enum enum in Postgres.
type TransactionType string

const (
	TransactionTypeIn         TransactionType = "IN"
	TransactionTypeOut        TransactionType = "OUT"
	TransactionTypeAdjustment TransactionType = "ADJ"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeIn,
	TransactionTypeOut,
	TransactionTypeAdjustment,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Display returns the human-readable label for the type.
func (t TransactionType) Display() string {
	switch t {
	case TransactionTypeIn:
		return "Stock In"
	case TransactionTypeOut:
		return "Stock Out"
	case TransactionTypeAdjustment:
		return "Adjustment"
	}
	return string(t)
}

// SignedDelta converts a stated quantity into the change applied to a
// product's on-hand count: IN adds, OUT subtracts, ADJ applies as given.
func (t TransactionType) SignedDelta(quantity int) int {
	switch t {
	case TransactionTypeIn:
		return quantity
	case TransactionTypeOut:
		return -quantity
	default:
		return quantity
	}
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
