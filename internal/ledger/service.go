package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
)

const (
	rejectReasonValidation        = "validation"
	rejectReasonNotFound          = "not_found"
	rejectReasonInsufficientStock = "insufficient_stock"
)

// errStaleQuantity signals that another writer moved the on-hand count
// between the read and the guarded update. The apply loop retries on it.
var errStaleQuantity = errors.New("stale quantity read")

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the stock-movement apply engine. Every change to a product's
// on-hand count goes through ApplyTransaction; nothing else writes it.
type Service interface {
	ApplyTransaction(ctx context.Context, input ApplyInput) (*TransactionDTO, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDTO, error)
}

// ApplyInput is the validated request for one stock movement. Quantity is a
// positive amount for IN and OUT; for ADJ it is the signed delta itself.
type ApplyInput struct {
	ProductID       uuid.UUID
	Type            enums.TransactionType
	Quantity        int
	Reason          *string
	Note            *string
	UserID          *uuid.UUID
	TransactionDate *time.Time
}

type service struct {
	store     Store
	txRunner  TxRunner
	usersRepo users.Repository
	metrics   *metrics.LedgerMetrics
	logg      *logger.Logger

	locks       *productLocks
	maxAttempts int
}

// NewService constructs the ledger service. Metrics and logger may be nil.
func NewService(
	store Store,
	txRunner TxRunner,
	usersRepo users.Repository,
	ledgerMetrics *metrics.LedgerMetrics,
	logg *logger.Logger,
	cfg config.LedgerConfig,
) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store required")
	}
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	maxAttempts := cfg.ApplyMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &service{
		store:       store,
		txRunner:    txRunner,
		usersRepo:   usersRepo,
		metrics:     ledgerMetrics,
		logg:        logg,
		locks:       newProductLocks(),
		maxAttempts: maxAttempts,
	}, nil
}

// ApplyTransaction records one stock movement and moves the product's
// on-hand count in the same transaction. The ledger row snapshots the count
// as it stood before the movement, so the history replays to the stored
// total.
func (s *service) ApplyTransaction(ctx context.Context, input ApplyInput) (*TransactionDTO, error) {
	if err := s.validate(ctx, input); err != nil {
		s.metrics.IncRejected(rejectReasonValidation)
		return nil, err
	}

	release := s.locks.acquire(input.ProductID)
	defer release()

	var applied *models.InventoryTransaction
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		txn, err := s.applyOnce(ctx, input)
		if err == nil {
			applied = txn
			break
		}
		if errors.Is(err, errStaleQuantity) {
			s.metrics.IncRetry()
			continue
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			switch appErr.Code() {
			case pkgerrors.CodeNotFound:
				s.metrics.IncRejected(rejectReasonNotFound)
			case pkgerrors.CodeInsufficientStock:
				s.metrics.IncRejected(rejectReasonInsufficientStock)
			}
		}
		return nil, err
	}

	if applied == nil {
		s.metrics.IncConflict()
		if s.logg != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, input.ProductID.String()),
				"stock movement abandoned after retry budget")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConcurrencyConflict,
			"stock movement lost the quantity race, retry the request")
	}

	s.metrics.IncApplied(string(input.Type))
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"product_id":       applied.ProductID.String(),
			"transaction_id":   applied.ID.String(),
			"transaction_type": string(applied.Type),
		}), "stock movement applied")
	}

	return s.GetTransaction(ctx, applied.ID)
}

// applyOnce runs one read-check-write round inside a transaction.
func (s *service) applyOnce(ctx context.Context, input ApplyInput) (*models.InventoryTransaction, error) {
	var txn *models.InventoryTransaction

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		product, err := store.FindProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		previous := product.CurrentQuantity
		next := previous + input.Type.SignedDelta(input.Quantity)
		if next < 0 {
			requested := input.Quantity
			if input.Type == enums.TransactionTypeAdjustment {
				requested = -input.Quantity
			}
			return pkgerrors.InsufficientStock(previous, requested)
		}

		swapped, err := store.CompareAndSetQuantity(ctx, product.ID, previous, next)
		if err != nil {
			return err
		}
		if !swapped {
			return errStaleQuantity
		}

		entry := &models.InventoryTransaction{
			ProductID:        product.ID,
			Type:             input.Type,
			Quantity:         input.Quantity,
			Reason:           input.Reason,
			Note:             input.Note,
			UserID:           input.UserID,
			PreviousQuantity: previous,
		}
		if input.TransactionDate != nil {
			entry.TransactionDate = input.TransactionDate.UTC()
		}
		if err := store.InsertTransaction(ctx, entry); err != nil {
			return err
		}

		txn = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.store.FindTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return toTransactionDTO(txn), nil
}

func (s *service) validate(ctx context.Context, input ApplyInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", input.Type))
	}

	switch input.Type {
	case enums.TransactionTypeIn, enums.TransactionTypeOut:
		if input.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	case enums.TransactionTypeAdjustment:
		if input.Quantity == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta cannot be zero")
		}
	}

	if input.UserID != nil && s.usersRepo != nil {
		exists, err := s.usersRepo.Exists(ctx, *input.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown user id")
		}
	}
	return nil
}
