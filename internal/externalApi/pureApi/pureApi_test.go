package pureApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/externalApi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *PureApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.PureApi.Url = srv.URL
	cfg.API.PureApi.ApiKey = "secret"
	cfg.API.PureApi.RateLimit = 100
	return New(cfg)
}

func TestGetGoldSpotPrice(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spot-prices", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Gold":{"bid":2345.6,"ask":2350.1},"Silver":{"bid":29.1,"ask":29.4}}`))
	})

	price, err := api.GetGoldSpotPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Gold", price.Metal)
	assert.True(t, price.Bid.Equal(decimal.RequireFromString("2345.6")))
	assert.True(t, price.Ask.Equal(decimal.RequireFromString("2350.1")))
	assert.False(t, price.AsOf.IsZero())
}

func TestGetGoldSpotPrice_MissingGold(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Silver":{"bid":29.1,"ask":29.4}}`))
	})

	_, err := api.GetGoldSpotPrice(context.Background())
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestRawSpotPrices_UpstreamError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	})

	_, err := api.RawSpotPrices(context.Background())
	assert.ErrorIs(t, err, externalApi.ErrUpstream)
}

func TestGetProducts(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "9", q.Get("attributeIds"))
		assert.Equal(t, "Gold", q.Get("material"))
		_, _ = w.Write([]byte(`[{"id":101,"title":"1 oz Gold Bar"},{"id":"abc","title":"Gold Eagle"}]`))
	})

	products, err := api.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "101", products[0].ID)
	assert.Equal(t, "1 oz Gold Bar", products[0].Name)
	assert.Equal(t, "abc", products[1].ID)
}

func TestRawProducts_PassThrough(t *testing.T) {
	body := `[{"id":1,"title":"x","weight":"1 oz"}]`
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	raw, err := api.RawProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
}
