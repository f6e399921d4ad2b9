package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/data/repository/memory"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/KotFed0t/gold_tracker/internal/service/ledgerService"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarket struct {
	err error
}

func (f *fakeMarket) ProxySpotPrices(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"Gold":{"bid":2050.1,"ask":2070.2}}`), nil
}

func (f *fakeMarket) ProxyProducts(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`[{"id":7,"title":"Buffalo"}]`), nil
}

func (f *fakeMarket) GetProducts(context.Context) (model.ProductCatalog, error) {
	return model.ProductCatalog{Products: []model.Product{{ID: "7", Name: "Buffalo"}, {ID: "custom", Name: "Custom Amount"}}}, f.err
}

func (f *fakeMarket) RefreshProducts(ctx context.Context) (model.ProductCatalog, error) {
	return f.GetProducts(ctx)
}

type stubReportGen struct{}

func (stubReportGen) Generate(context.Context, model.LedgerReport) ([]byte, string, error) {
	return []byte("PK"), ".xlsx", nil
}

func newTestServer(t *testing.T, market Market) http.Handler {
	t.Helper()

	cfg := &config.Config{RecentTransactionsLimit: 10}
	fees := model.FeeSettings{
		SurchargeRate:        decimal.RequireFromString("0.01"),
		MembershipRebateRate: decimal.RequireFromString("0.02"),
		MarketplaceFeeRate:   decimal.RequireFromString("0.0075"),
	}
	ledger := ledgerService.New(cfg, repository.NewLedger(memory.New(), fees), nil, stubReportGen{}, nil)
	return New(cfg, ledger, market).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestHealth_SetsRequestID(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProxyRoutes(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/gold-price", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"Gold":{"bid":2050.1,"ask":2070.2}}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/pure-products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"id":7,"title":"Buffalo"}]`, rec.Body.String())
}

func TestProxyRoutes_UpstreamFailure(t *testing.T) {
	h := newTestServer(t, &fakeMarket{err: errors.New("down")})

	rec := do(t, h, http.MethodGet, "/api/gold-price", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, `{"error":"Failed to fetch gold price"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/pure-products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, `{"error":"Failed to fetch products"}`, rec.Body.String())
}

func TestProducts(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[{"id":"7","name":"Buffalo"},{"id":"custom","name":"Custom Amount"}]}`, rec.Body.String())
}

func TestPurchaseAndSaleFlow(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodPost, "/api/purchases", `{
		"date": "2025-01-10",
		"amount": 10,
		"pricePerUnit": "2000",
		"executiveMembership": true,
		"productName": "Buffalo"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lot storeModel.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lot))
	require.NotNil(t, lot.EffectivePricePerUnit)
	assert.True(t, lot.EffectivePricePerUnit.Equal(decimal.NewFromInt(1960)))

	rec = do(t, h, http.MethodPost, "/api/sales", `{
		"date": "2025-02-01",
		"pricePerUnit": 2100,
		"purchaseAllocations": [{"purchaseId": "`+lot.ID+`", "amount": "11"}]
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "you can only sell up to 10 oz from purchase dated 2025-01-10", errResp.Error)

	rec = do(t, h, http.MethodPost, "/api/sales", `{
		"date": "2025-02-01",
		"pricePerUnit": 2100,
		"purchaseAllocations": [{"purchaseId": "`+lot.ID+`", "amount": "4"}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale storeModel.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.True(t, sale.Profit.Equal(decimal.NewFromInt(560)))
	assert.Equal(t, "7.14", sale.ProfitPercentage.StringFixed(2))

	rec = do(t, h, http.MethodDelete, "/api/purchases/"+lot.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/lots/available", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lots []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lots))
	require.Len(t, lots, 1)
	assert.Equal(t, "6", lots[0]["available"])

	rec = do(t, h, http.MethodGet, "/api/transactions/recent?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "sale", txs[0]["type"])

	rec = do(t, h, http.MethodDelete, "/api/sales/"+sale.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/purchases/"+lot.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPreviewPurchase_ReportsNegativePrice(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})
	body := `{"amount":"1","pricePerUnit":"100","otherDiscount":{"rate":"150"}}`

	rec := do(t, h, http.MethodPost, "/api/purchases/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var pv map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pv))
	assert.Equal(t, "-50", pv["effectiveTotalPrice"])

	rec = do(t, h, http.MethodPost, "/api/purchases", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodPost, "/api/purchases", `{"amount":"abc","pricePerUnit":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","details":{"field":"quantity","reason":"must be a number"}}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/purchases", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/transactions/recent?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/sales/missing", `{"pricePerUnit":"1","purchaseAllocations":[{"purchaseId":"x","amount":"1"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/sales/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeeSettings(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/settings/fees", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"surchargeRate":"0.01","membershipRebateRate":"0.02","marketplaceFeeRate":"0.0075"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/settings/fees", `{"surchargeRate":"0.015","membershipRebateRate":"0.02","marketplaceFeeRate":"0.01"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/settings/fees", "")
	assert.JSONEq(t, `{"surchargeRate":"0.015","membershipRebateRate":"0.02","marketplaceFeeRate":"0.01"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/settings/fees", `{"surchargeRate":"2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gold-ledger-"+time.Now().UTC().Format("2006-01-02")+".xlsx")

	rec = do(t, h, http.MethodPost, "/api/report/upload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSummary(t *testing.T) {
	h := newTestServer(t, &fakeMarket{})

	rec := do(t, h, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "0", summary["currentHoldings"])
	assert.NotContains(t, summary, "spotPrice")
}
