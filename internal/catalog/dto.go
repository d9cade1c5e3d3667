package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// CategoryDTO is the read model for a category.
type CategoryDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	ProductsCount int64     `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductSummaryDTO is the compact row used by product listings.
type ProductSummaryDTO struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	SKU             string            `json:"sku"`
	Price           decimal.Decimal   `json:"price"`
	CurrentQuantity int               `json:"current_quantity"`
	CategoryName    *string           `json:"category_name,omitempty"`
	StockStatus     enums.StockStatus `json:"stock_status"`
	ImageURL        *string           `json:"image_url,omitempty"`
}

// ProductDetailDTO is the full read model for a single product.
type ProductDetailDTO struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	SKU             string            `json:"sku"`
	Price           decimal.Decimal   `json:"price"`
	CostPrice       decimal.Decimal   `json:"cost_price"`
	CurrentQuantity int               `json:"current_quantity"`
	MinQuantity     int               `json:"min_quantity"`
	Category        *CategoryDTO      `json:"category,omitempty"`
	StockStatus     enums.StockStatus `json:"stock_status"`
	ProfitMargin    *float64          `json:"profit_margin,omitempty"`
	ImageURL        *string           `json:"image_url,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ProductListResult pages product summaries.
type ProductListResult struct {
	Products []ProductSummaryDTO `json:"products"`
	Total    int64               `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

func toCategoryDTO(category *models.Category, productsCount int64) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		Description:   category.Description,
		ProductsCount: productsCount,
		CreatedAt:     category.CreatedAt,
		UpdatedAt:     category.UpdatedAt,
	}
}

// NewProductSummaryDTO maps a product row to its listing shape. Shared with
// the reporting queries so every surface renders products the same way.
func NewProductSummaryDTO(product models.Product, mediaBaseURL string) ProductSummaryDTO {
	return toProductSummaryDTO(product, mediaBaseURL)
}

func toProductSummaryDTO(product models.Product, mediaBaseURL string) ProductSummaryDTO {
	dto := ProductSummaryDTO{
		ID:              product.ID,
		Name:            product.Name,
		SKU:             product.SKU,
		Price:           product.Price,
		CurrentQuantity: product.CurrentQuantity,
		StockStatus:     enums.StockStatusFor(product.CurrentQuantity, product.MinQuantity),
		ImageURL:        resolveImageURL(product.ImageKey, mediaBaseURL),
	}
	if product.Category != nil {
		name := product.Category.Name
		dto.CategoryName = &name
	}
	return dto
}

func toProductDetailDTO(product *models.Product, categoryProducts int64, mediaBaseURL string) *ProductDetailDTO {
	if product == nil {
		return nil
	}
	return &ProductDetailDTO{
		ID:              product.ID,
		Name:            product.Name,
		Description:     product.Description,
		SKU:             product.SKU,
		Price:           product.Price,
		CostPrice:       product.CostPrice,
		CurrentQuantity: product.CurrentQuantity,
		MinQuantity:     product.MinQuantity,
		Category:        toCategoryDTO(product.Category, categoryProducts),
		StockStatus:     enums.StockStatusFor(product.CurrentQuantity, product.MinQuantity),
		ProfitMargin:    profitMargin(product.Price, product.CostPrice),
		ImageURL:        resolveImageURL(product.ImageKey, mediaBaseURL),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

// profitMargin computes ((price − cost) / price) × 100 rounded to two
// decimals. Nil when the cost or price is not positive.
func profitMargin(price, cost decimal.Decimal) *float64 {
	if !cost.IsPositive() || !price.IsPositive() {
		return nil
	}
	margin, _ := price.Sub(cost).
		Div(price).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return &margin
}

func resolveImageURL(imageKey *string, baseURL string) *string {
	if imageKey == nil || *imageKey == "" || baseURL == "" {
		return nil
	}
	url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*imageKey, "/")
	return &url
}
