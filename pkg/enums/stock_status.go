package enums

// StockStatus is the derived availability bucket for a product.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// StockStatusFor derives the status from the current count and the reorder
// threshold. Zero (or below) is out of stock regardless of the threshold.
func StockStatusFor(currentQuantity, minQuantity int) StockStatus {
	switch {
	case currentQuantity <= 0:
		return StockStatusOutOfStock
	case currentQuantity <= minQuantity:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
