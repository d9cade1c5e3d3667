package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Store is the persistence surface the apply engine runs against.
type Store interface {
	// WithTx returns a store bound to the provided transaction.
	WithTx(tx *gorm.DB) Store

	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// CompareAndSetQuantity moves the product's on-hand count from one
	// value to another in a single guarded statement. It reports false
	// without error when the stored count no longer matches.
	CompareAndSetQuantity(ctx context.Context, productID uuid.UUID, from, to int) (bool, error)

	InsertTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the GORM-backed ledger store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return s
	}
	return &gormStore{db: tx}
}

func (s *gormStore) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *gormStore) CompareAndSetQuantity(ctx context.Context, productID uuid.UUID, from, to int) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND current_quantity = ?", productID, from).
		Update("current_quantity", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) InsertTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *gormStore) FindTransaction(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}
