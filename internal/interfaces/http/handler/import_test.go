package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feedbridge/backend/internal/application/importer"
	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindIDByMetadata(ctx context.Context, key, value string) (uuid.UUID, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []order.Item) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *mockOrderRepository) AppendNote(ctx context.Context, orderID uuid.UUID, text string) error {
	args := m.Called(ctx, orderID, text)
	return args.Error(0)
}

type mockProductFinder struct {
	mock.Mock
}

func (m *mockProductFinder) FindIDBySKU(ctx context.Context, sku string) (uuid.UUID, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockRunLogRepository struct {
	mock.Mock
}

func (m *mockRunLogRepository) ReplaceLatest(ctx context.Context, log *order.ImportRunLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockRunLogRepository) Latest(ctx context.Context) (*order.ImportRunLog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ImportRunLog), args.Error(1)
}

type mockMetadataRepair struct {
	mock.Mock
}

func (m *mockMetadataRepair) ForceStatus(ctx context.Context, orderID uuid.UUID, status order.Status) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *mockMetadataRepair) EnsureMetadata(ctx context.Context, orderID uuid.UUID, key, value string) error {
	args := m.Called(ctx, orderID, key, value)
	return args.Error(0)
}

func (m *mockMetadataRepair) ListItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Item), args.Error(1)
}

func (m *mockMetadataRepair) RepairItem(ctx context.Context, itemID, productID uuid.UUID, quantity int, lineTotal decimal.Decimal) error {
	args := m.Called(ctx, itemID, productID, quantity, lineTotal)
	return args.Error(0)
}

func (m *mockMetadataRepair) SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	args := m.Called(ctx, orderID, total)
	return args.Error(0)
}

func (m *mockMetadataRepair) ReadRequiredFields(ctx context.Context, orderID uuid.UUID) (map[order.RequiredField]string, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.RequiredField]string), args.Error(1)
}

func (m *mockMetadataRepair) BackfillField(ctx context.Context, orderID uuid.UUID, field order.RequiredField, value string) error {
	args := m.Called(ctx, orderID, field, value)
	return args.Error(0)
}

const sampleFeed = "Order ID,Seller SKU,Quantity,Unit Price,Recipient,Phone #,Country,State,City,Zipcode,Address Line 1\n" +
	"TT-100,BLUE-TEE-M,2,9.99,Jane Doe,(512) 555-0101,US,Texas,Austin,78701,123 Main St\n"

type importTestEnv struct {
	handler *ImportHandler
	orders  *mockOrderRepository
	finder  *mockProductFinder
	runLogs *mockRunLogRepository
}

func newImportTestEnv(t *testing.T, maxUpload int64) *importTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orders := new(mockOrderRepository)
	finder := new(mockProductFinder)
	runLogs := new(mockRunLogRepository)
	repair := new(mockMetadataRepair)

	cfg := importer.Config{
		Currency:             "USD",
		PlaceholderProductID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		ExternalIDMetaKey:    "_tiktok_order_id",
		PaidDateMetaKey:      "_paid_date",
		DefaultItemName:      "TikTok Item",
		MissingFieldSentinel: "Unknown",
	}
	finalizer := importer.NewFinalizer(repair, cfg, zap.NewNop())
	service := importer.NewService(orders, finder, runLogs, finalizer, cfg, zap.NewNop())

	return &importTestEnv{
		handler: NewImportHandler(service, runLogs, maxUpload, zap.NewNop()),
		orders:  orders,
		finder:  finder,
		runLogs: runLogs,
	}
}

func (e *importTestEnv) router() *gin.Engine {
	router := gin.New()
	router.GET("/admin/import", e.handler.ShowPage)
	router.POST("/admin/import", e.handler.Run)
	router.GET("/api/v1/import/last-run", e.handler.LastRun)
	return router
}

func multipartBody(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestImportHandler_Run(t *testing.T) {
	t.Run("dry run returns summary without writes", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		env.orders.On("FindIDByMetadata", mock.Anything, "_tiktok_order_id", "TT-100").
			Return(uuid.Nil, shared.ErrNotFound)
		env.finder.On("FindIDBySKU", mock.Anything, "BLUE-TEE-M").
			Return(uuid.New(), nil)
		env.runLogs.On("ReplaceLatest", mock.Anything, mock.Anything).Return(nil)

		body, contentType := multipartBody(t, "orders.csv", sampleFeed, map[string]string{"dry_run": "1"})
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"dry_run":true`)
		assert.Contains(t, w.Body.String(), "DRY RUN CREATE | TikTok TT-100")
		env.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing file yields bad request", func(t *testing.T) {
		env := newImportTestEnv(t, 0)

		body, contentType := multipartBody(t, "", "", map[string]string{"dry_run": "1"})
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file is required")
	})

	t.Run("empty feed yields invalid feed error", func(t *testing.T) {
		env := newImportTestEnv(t, 0)

		body, contentType := multipartBody(t, "orders.csv", "", nil)
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INVALID_FEED")
	})

	t.Run("feed without order id column yields invalid feed error", func(t *testing.T) {
		env := newImportTestEnv(t, 0)

		body, contentType := multipartBody(t, "orders.csv",
			"Seller SKU,Quantity,Unit Price\nBLUE-TEE-M,1,9.99\n", nil)
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INVALID_FEED")
	})

	t.Run("oversized upload is rejected", func(t *testing.T) {
		env := newImportTestEnv(t, 16)

		body, contentType := multipartBody(t, "orders.csv", sampleFeed, nil)
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("form submit redirects back to admin page", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		env.orders.On("FindIDByMetadata", mock.Anything, "_tiktok_order_id", "TT-100").
			Return(uuid.Nil, shared.ErrNotFound)
		env.finder.On("FindIDBySKU", mock.Anything, "BLUE-TEE-M").
			Return(uuid.New(), nil)
		env.runLogs.On("ReplaceLatest", mock.Anything, mock.Anything).Return(nil)

		body, contentType := multipartBody(t, "orders.csv", sampleFeed, map[string]string{
			"dry_run":  "1",
			"redirect": "1",
		})
		req := httptest.NewRequest("POST", "/admin/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin/import", w.Header().Get("Location"))
	})
}

func TestImportHandler_LastRun(t *testing.T) {
	t.Run("returns latest run log", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		runLog := order.NewImportRunLog("orders.csv", false, false)
		runLog.Append("Created TikTok TT-100 -> order abc")
		runLog.Created = 1
		runLog.Finish()
		env.runLogs.On("Latest", mock.Anything).Return(runLog, nil)

		req := httptest.NewRequest("GET", "/api/v1/import/last-run", nil)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"created":1`)
		assert.Contains(t, w.Body.String(), "Created TikTok TT-100")
	})

	t.Run("returns 404 before first run", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		env.runLogs.On("Latest", mock.Anything).Return(nil, shared.ErrNotFound)

		req := httptest.NewRequest("GET", "/api/v1/import/last-run", nil)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestImportHandler_ShowPage(t *testing.T) {
	t.Run("renders form and last run log", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		runLog := order.NewImportRunLog("orders.csv", false, true)
		runLog.Append("Repaired TikTok TT-100 -> order abc")
		runLog.Repaired = 1
		runLog.StartedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		runLog.Finish()
		env.runLogs.On("Latest", mock.Anything).Return(runLog, nil)

		req := httptest.NewRequest("GET", "/admin/import", nil)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Repaired TikTok TT-100")
		assert.Contains(t, w.Body.String(), "(repair mode)")
	})

	t.Run("renders page before first run", func(t *testing.T) {
		env := newImportTestEnv(t, 0)
		env.runLogs.On("Latest", mock.Anything).Return(nil, shared.ErrNotFound)

		req := httptest.NewRequest("GET", "/admin/import", nil)
		w := httptest.NewRecorder()
		env.router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No import has run yet.")
	})
}
