package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/catalog"
	"github.com/stockroomhq/stockroom-backend/internal/ledger"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// DefaultRecentLimit caps the dashboard's latest-transactions feed.
const DefaultRecentLimit = 10

// Service exposes the read-only inventory reports.
type Service interface {
	LowStock(ctx context.Context) ([]catalog.ProductSummaryDTO, error)
	OutOfStock(ctx context.Context) ([]catalog.ProductSummaryDTO, error)
	RecentTransactions(ctx context.Context, limit int) ([]ledger.TransactionDTO, error)
	ProductTransactions(ctx context.Context, productID uuid.UUID, page pagination.Params) (*TransactionPage, error)
	Transactions(ctx context.Context, filter TransactionFilter, page pagination.Params) (*TransactionPage, error)
	Summary(ctx context.Context, since, until time.Time) (*SummaryDTO, error)
}

// TransactionPage pages one product's ledger history.
type TransactionPage struct {
	Transactions []ledger.TransactionDTO `json:"transactions"`
	Total        int64                   `json:"total"`
	Limit        int                     `json:"limit"`
	Offset       int                     `json:"offset"`
}

// SummaryDTO is the inventory dashboard aggregate. TotalIn and TotalOut sum
// only IN and OUT quantities; adjustments show up in the counts alone.
type SummaryDTO struct {
	TotalProducts     int64                           `json:"total_products"`
	LowStockCount     int64                           `json:"low_stock_count"`
	OutOfStockCount   int64                           `json:"out_of_stock_count"`
	TotalIn           int64                           `json:"total_in"`
	TotalOut          int64                           `json:"total_out"`
	NetChange         int64                           `json:"net_change"`
	TransactionCounts map[enums.TransactionType]int64 `json:"transaction_counts"`
	TotalTransactions int64                           `json:"total_transactions"`
}

type service struct {
	repo         *Repository
	mediaBaseURL string
}

// NewService constructs the reporting service.
func NewService(repo *Repository, mediaBaseURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, mediaBaseURL: mediaBaseURL}, nil
}

func (s *service) LowStock(ctx context.Context) ([]catalog.ProductSummaryDTO, error) {
	rows, err := s.repo.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(rows), nil
}

func (s *service) OutOfStock(ctx context.Context) ([]catalog.ProductSummaryDTO, error) {
	rows, err := s.repo.OutOfStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(rows), nil
}

func (s *service) RecentTransactions(ctx context.Context, limit int) ([]ledger.TransactionDTO, error) {
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = DefaultRecentLimit
	}
	rows, err := s.repo.RecentTransactions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toTransactionDTOs(rows), nil
}

func (s *service) ProductTransactions(
	ctx context.Context,
	productID uuid.UUID,
	page pagination.Params,
) (*TransactionPage, error) {
	if err := s.ensureProductExists(ctx, productID); err != nil {
		return nil, err
	}

	rows, total, err := s.repo.TransactionsForProduct(ctx, productID, page)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	return &TransactionPage{
		Transactions: toTransactionDTOs(rows),
		Total:        total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}, nil
}

func (s *service) Transactions(
	ctx context.Context,
	filter TransactionFilter,
	page pagination.Params,
) (*TransactionPage, error) {
	rows, total, err := s.repo.ListTransactions(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	return &TransactionPage{
		Transactions: toTransactionDTOs(rows),
		Total:        total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}, nil
}

func (s *service) Summary(ctx context.Context, since, until time.Time) (*SummaryDTO, error) {
	counts, err := s.repo.StockCounts(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.MovementTotals(ctx, since, until)
	if err != nil {
		return nil, err
	}

	var totalTransactions int64
	for _, count := range movements.CountsByType {
		totalTransactions += count
	}

	return &SummaryDTO{
		TotalProducts:     counts.TotalProducts,
		LowStockCount:     counts.LowStock,
		OutOfStockCount:   counts.OutOfStock,
		TotalIn:           movements.TotalIn,
		TotalOut:          movements.TotalOut,
		NetChange:         movements.TotalIn - movements.TotalOut,
		TransactionCounts: movements.CountsByType,
		TotalTransactions: totalTransactions,
	}, nil
}

func (s *service) ensureProductExists(ctx context.Context, productID uuid.UUID) error {
	var count int64
	err := s.repo.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			count = 0
		} else {
			return err
		}
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) toSummaries(rows []models.Product) []catalog.ProductSummaryDTO {
	summaries := make([]catalog.ProductSummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, catalog.NewProductSummaryDTO(row, s.mediaBaseURL))
	}
	return summaries
}

func toTransactionDTOs(rows []models.InventoryTransaction) []ledger.TransactionDTO {
	dtos := make([]ledger.TransactionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *ledger.NewTransactionDTO(&rows[i]))
	}
	return dtos
}
