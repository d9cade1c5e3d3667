package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type ledgerHarness struct {
	svc    Service
	client *db.Client
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{},
		config.FeatureFlagsConfig{UseSQLite: true, SQLitePath: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.Category{},
		&models.User{},
		&models.Product{},
		&models.InventoryTransaction{},
	))

	svc, err := NewService(
		NewStore(client.DB()),
		client,
		users.NewRepository(client.DB()),
		nil,
		nil,
		config.LedgerConfig{ApplyMaxAttempts: 3},
	)
	require.NoError(t, err)

	return &ledgerHarness{svc: svc, client: client}
}

func (h *ledgerHarness) seedProduct(t *testing.T, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:            "Widget",
		SKU:             "WID-" + uuid.NewString()[:8],
		Price:           decimal.NewFromInt(10),
		CurrentQuantity: quantity,
	}
	require.NoError(t, h.client.DB().Create(product).Error)
	return product
}

func (h *ledgerHarness) currentQuantity(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, h.client.DB().First(&product, "id = ?", productID).Error)
	return product.CurrentQuantity
}

func (h *ledgerHarness) transactionCount(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.client.DB().
		Model(&models.InventoryTransaction{}).
		Where("product_id = ?", productID).
		Count(&count).Error)
	return count
}

func TestApplyStockIn(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 100)

	dto, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeIn,
		Quantity:  50,
	})
	require.NoError(t, err)

	require.Equal(t, 100, dto.PreviousQuantity)
	require.Equal(t, 150, dto.NewQuantity)
	require.Equal(t, "Stock In", dto.TransactionTypeDisplay)
	require.Equal(t, 150, h.currentQuantity(t, product.ID))
	require.EqualValues(t, 1, h.transactionCount(t, product.ID))
}

func TestApplyStockOut(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 150)

	dto, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeOut,
		Quantity:  30,
	})
	require.NoError(t, err)

	require.Equal(t, 150, dto.PreviousQuantity)
	require.Equal(t, 120, dto.NewQuantity)
	require.Equal(t, 120, h.currentQuantity(t, product.ID))
}

func TestApplyStockOutInsufficient(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 10)

	_, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeOut,
		Quantity:  25,
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())

	// Rejections leave no trace.
	require.Equal(t, 10, h.currentQuantity(t, product.ID))
	require.EqualValues(t, 0, h.transactionCount(t, product.ID))
}

func TestApplyAdjustment(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 40)

	down, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeAdjustment,
		Quantity:  -15,
	})
	require.NoError(t, err)
	require.Equal(t, 25, down.NewQuantity)

	up, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeAdjustment,
		Quantity:  5,
	})
	require.NoError(t, err)
	require.Equal(t, 25, up.PreviousQuantity)
	require.Equal(t, 30, up.NewQuantity)
	require.Equal(t, 30, h.currentQuantity(t, product.ID))
}

func TestApplyAdjustmentBelowZeroRejected(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 5)

	_, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeAdjustment,
		Quantity:  -12,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())
	require.Equal(t, 5, h.currentQuantity(t, product.ID))
}

func TestApplyValidation(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 10)

	cases := []struct {
		name  string
		input ApplyInput
	}{
		{"missing product id", ApplyInput{Type: enums.TransactionTypeIn, Quantity: 1}},
		{"invalid type", ApplyInput{ProductID: product.ID, Type: "TRANSFER", Quantity: 1}},
		{"zero quantity in", ApplyInput{ProductID: product.ID, Type: enums.TransactionTypeIn}},
		{"negative quantity out", ApplyInput{ProductID: product.ID,
			Type: enums.TransactionTypeOut, Quantity: -3}},
		{"zero adjustment", ApplyInput{ProductID: product.ID,
			Type: enums.TransactionTypeAdjustment}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.ApplyTransaction(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr, "expected typed error, got %v", err)
			require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestApplyUnknownProduct(t *testing.T) {
	h := newLedgerHarness(t)

	_, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: uuid.New(),
		Type:      enums.TransactionTypeIn,
		Quantity:  1,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestApplyUnknownUserRejected(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 10)

	missing := uuid.New()
	_, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeIn,
		Quantity:  1,
		UserID:    &missing,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestApplyRecordsUserName(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 10)

	user := &models.User{Username: "amara", FirstName: "Amara", LastName: "Osei"}
	require.NoError(t, h.client.DB().Create(user).Error)

	reason := "weekly restock"
	dto, err := h.svc.ApplyTransaction(context.Background(), ApplyInput{
		ProductID: product.ID,
		Type:      enums.TransactionTypeIn,
		Quantity:  4,
		Reason:    &reason,
		UserID:    &user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, dto.UserName)
	require.Equal(t, "Amara Osei", *dto.UserName)
	require.NotNil(t, dto.ProductName)
	require.Equal(t, "Widget", *dto.ProductName)
}

func TestLedgerReplaysToStoredTotal(t *testing.T) {
	h := newLedgerHarness(t)
	product := h.seedProduct(t, 0)
	ctx := context.Background()

	moves := []ApplyInput{
		{ProductID: product.ID, Type: enums.TransactionTypeIn, Quantity: 100},
		{ProductID: product.ID, Type: enums.TransactionTypeOut, Quantity: 30},
		{ProductID: product.ID, Type: enums.TransactionTypeAdjustment, Quantity: -20},
		{ProductID: product.ID, Type: enums.TransactionTypeIn, Quantity: 7},
	}
	for _, move := range moves {
		_, err := h.svc.ApplyTransaction(ctx, move)
		require.NoError(t, err)
	}

	var rows []models.InventoryTransaction
	require.NoError(t, h.client.DB().
		Where("product_id = ?", product.ID).
		Order("created_at ASC").
		Find(&rows).Error)

	replayed := 0
	for _, row := range rows {
		require.Equal(t, replayed, row.PreviousQuantity)
		replayed += row.Type.SignedDelta(row.Quantity)
	}
	require.Equal(t, 57, replayed)
	require.Equal(t, replayed, h.currentQuantity(t, product.ID))
}

func TestGetTransactionNotFound(t *testing.T) {
	h := newLedgerHarness(t)

	_, err := h.svc.GetTransaction(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
