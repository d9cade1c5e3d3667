package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Repository runs the read-only reporting queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a reporting repository on the shared connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LowStockProducts returns products at or below their minimum level, most
// depleted first. Out-of-stock products qualify too.
func (r *Repository) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("current_quantity <= min_quantity").
		Order("current_quantity ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// OutOfStockProducts returns products with nothing on hand.
func (r *Repository) OutOfStockProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("current_quantity <= 0").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// RecentTransactions returns the newest ledger entries across all products.
// Insertion order breaks transaction-date ties.
func (r *Repository) RecentTransactions(ctx context.Context, limit int) ([]models.InventoryTransaction, error) {
	var rows []models.InventoryTransaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		Order("transaction_date DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// TransactionsForProduct pages the product's ledger, newest first, and
// reports the total entry count.
func (r *Repository) TransactionsForProduct(
	ctx context.Context,
	productID uuid.UUID,
	page pagination.Params,
) ([]models.InventoryTransaction, int64, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.InventoryTransaction{}).
		Where("product_id = ?", productID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.InventoryTransaction
	err := qb.
		Preload("Product").
		Preload("User").
		Order("transaction_date DESC, created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TransactionFilter narrows the global ledger listing. Nil fields match
// everything.
type TransactionFilter struct {
	ProductID *uuid.UUID
	Type      *enums.TransactionType
}

// ListTransactions pages the full ledger, newest first, optionally narrowed
// by product and movement type.
func (r *Repository) ListTransactions(
	ctx context.Context,
	filter TransactionFilter,
	page pagination.Params,
) ([]models.InventoryTransaction, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.InventoryTransaction{})
	if filter.ProductID != nil {
		qb = qb.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		qb = qb.Where("transaction_type = ?", *filter.Type)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.InventoryTransaction
	err := qb.
		Preload("Product").
		Preload("User").
		Order("transaction_date DESC, created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MovementTotals aggregates ledger quantities inside the window. Zero-valued
// bounds leave that side of the window open.
type MovementTotals struct {
	TotalIn      int64
	TotalOut     int64
	CountsByType map[enums.TransactionType]int64
}

func (r *Repository) MovementTotals(ctx context.Context, since, until time.Time) (*MovementTotals, error) {
	type bucket struct {
		TransactionType enums.TransactionType
		Count           int64
		Total           int64
	}

	qb := r.db.WithContext(ctx).
		Model(&models.InventoryTransaction{}).
		Select("transaction_type, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total").
		Group("transaction_type")
	if !since.IsZero() {
		qb = qb.Where("transaction_date >= ?", since)
	}
	if !until.IsZero() {
		qb = qb.Where("transaction_date < ?", until)
	}

	var buckets []bucket
	if err := qb.Scan(&buckets).Error; err != nil {
		return nil, err
	}

	totals := &MovementTotals{CountsByType: make(map[enums.TransactionType]int64)}
	for _, b := range buckets {
		totals.CountsByType[b.TransactionType] = b.Count
		switch b.TransactionType {
		case enums.TransactionTypeIn:
			totals.TotalIn = b.Total
		case enums.TransactionTypeOut:
			totals.TotalOut = b.Total
		}
	}
	return totals, nil
}

// StockCounts returns the product totals used by the summary.
type StockCounts struct {
	TotalProducts int64
	LowStock      int64
	OutOfStock    int64
}

func (r *Repository) StockCounts(ctx context.Context) (*StockCounts, error) {
	counts := &StockCounts{}

	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Count(&counts.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("current_quantity <= min_quantity").
		Count(&counts.LowStock).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("current_quantity <= 0").
		Count(&counts.OutOfStock).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
