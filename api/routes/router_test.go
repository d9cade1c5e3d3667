package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stockroomhq/stockroom-backend/internal/catalog"
	"github.com/stockroomhq/stockroom-backend/internal/ledger"
	"github.com/stockroomhq/stockroom-backend/internal/reports"
	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	pkgredis "github.com/stockroomhq/stockroom-backend/pkg/redis"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

func newTestRouter(t *testing.T) http.Handler {
	return newTestRouterWithStore(t, nil)
}

func newTestRouterWithStore(t *testing.T, store pkgredis.IdempotencyStore) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
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

	catalogService, err := catalog.NewService(catalog.NewRepository(client.DB()), client, "")
	require.NoError(t, err)

	ledgerService, err := ledger.NewService(
		ledger.NewStore(client.DB()),
		client,
		users.NewRepository(client.DB()),
		nil,
		nil,
		config.LedgerConfig{ApplyMaxAttempts: 3},
	)
	require.NoError(t, err)

	reportsService, err := reports.NewService(reports.NewRepository(client.DB()), "")
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	return NewRouter(Deps{
		Config:           &config.Config{App: config.AppConfig{Env: config.AppEnvDev}},
		Logger:           logg,
		DBPinger:         client,
		CatalogService:   catalogService,
		LedgerService:    ledgerService,
		ReportsService:   reportsService,
		IdempotencyStore: store,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object payload, got %T", envelope.Data)
	return data
}

type fakeIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sr:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func doJSONWithKey(t *testing.T, router http.Handler, method, path string, payload any, key string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dev", rec.Header().Get("X-Stockroom-Env"))
}

func TestStockMovementFlow(t *testing.T) {
	router := newTestRouter(t)

	// Category.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Beverages",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decodeData(t, rec)["id"].(string)

	// Product with opening stock.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":             "Cold Brew",
		"sku":              "BEV-001",
		"price":            "4.50",
		"cost_price":       "1.75",
		"initial_quantity": 100,
		"min_quantity":     10,
		"category_id":      categoryID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	product := decodeData(t, rec)
	productID := product["id"].(string)
	require.EqualValues(t, 100, product["current_quantity"])

	// Stock in.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products/"+productID+"/transactions", map[string]any{
		"transaction_type": "IN",
		"quantity":         50,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	txn := decodeData(t, rec)
	require.EqualValues(t, 100, txn["previous_quantity"])
	require.EqualValues(t, 150, txn["new_quantity"])

	// Stock out.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products/"+productID+"/transactions", map[string]any{
		"transaction_type": "OUT",
		"quantity":         30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Over-withdrawal is rejected with the available amount.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products/"+productID+"/transactions", map[string]any{
		"transaction_type": "OUT",
		"quantity":         500,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errEnvelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errEnvelope))
	require.Equal(t, "INSUFFICIENT_STOCK", errEnvelope.Error.Code)

	// Quantity reflects only the applied movements.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 120, decodeData(t, rec)["current_quantity"])

	// History is newest first.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID+"/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData(t, rec)
	require.EqualValues(t, 2, page["total"])

	// Summary counts the applied movements.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/transactions/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData(t, rec)
	require.EqualValues(t, 50, summary["total_in"])
	require.EqualValues(t, 30, summary["total_out"])

	// Global listing narrows by movement type.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/transactions?transaction_type=OUT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decodeData(t, rec)["total"])
}

func TestIdempotentTransactionReplay(t *testing.T) {
	store := &fakeIdempotencyStore{values: map[string]string{}}
	router := newTestRouterWithStore(t, store)

	// With a store wired, guarded creates demand a key.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Guarded"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONWithKey(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":             "Cold Brew",
		"sku":              "BEV-001",
		"price":            "4.50",
		"initial_quantity": 100,
	}, "create-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := decodeData(t, rec)["id"].(string)

	path := "/api/v1/products/" + productID + "/transactions"
	payload := map[string]any{"transaction_type": "IN", "quantity": 25}

	first := doJSONWithKey(t, router, http.MethodPost, path, payload, "apply-1")
	require.Equal(t, http.StatusCreated, first.Code)
	firstBody := first.Body.String()
	require.EqualValues(t, 125, decodeData(t, first)["new_quantity"])

	// Retrying the same request replays the stored response.
	replay := doJSONWithKey(t, router, http.MethodPost, path, payload, "apply-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	require.Equal(t, firstBody, replay.Body.String())

	// The replay did not move stock again.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 125, decodeData(t, rec)["current_quantity"])

	// Reusing the key with a different body is rejected.
	rec = doJSONWithKey(t, router, http.MethodPost, path,
		map[string]any{"transaction_type": "IN", "quantity": 99}, "apply-1")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCategoryDeleteConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Tools"})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "Hammer",
		"sku":         "TL-001",
		"price":       "12.00",
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/categories/"+categoryID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var errEnvelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errEnvelope))
	require.Equal(t, "REFERENTIAL_INTEGRITY", errEnvelope.Error.Code)
}

func TestProductValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "NO-NAME",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLowStockEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":             "Scarce",
		"sku":              "SC-001",
		"price":            "2.00",
		"initial_quantity": 2,
		"min_quantity":     5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	rows, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
}
