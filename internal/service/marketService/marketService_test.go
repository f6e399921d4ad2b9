package marketService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/data/cache"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApi struct {
	price    model.SpotPrice
	products []model.Product
	err      error
	calls    int
}

func (f *fakeApi) RawSpotPrices(context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"Gold":{"bid":2050,"ask":2070}}`), nil
}

func (f *fakeApi) GetGoldSpotPrice(context.Context) (model.SpotPrice, error) {
	f.calls++
	return f.price, f.err
}

func (f *fakeApi) RawProducts(context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`[{"id":1,"title":"Buffalo"}]`), nil
}

func (f *fakeApi) GetProducts(context.Context) ([]model.Product, error) {
	f.calls++
	return f.products, f.err
}

type fakeCache struct {
	price   *model.SpotPrice
	catalog *model.ProductCatalog
}

func (f *fakeCache) GetSpotPrice(context.Context) (model.SpotPrice, error) {
	if f.price == nil {
		return model.SpotPrice{}, cache.ErrMiss
	}
	return *f.price, nil
}

func (f *fakeCache) SetSpotPrice(_ context.Context, price model.SpotPrice) error {
	f.price = &price
	return nil
}

func (f *fakeCache) GetProducts(context.Context) (model.ProductCatalog, error) {
	if f.catalog == nil {
		return model.ProductCatalog{}, cache.ErrMiss
	}
	return *f.catalog, nil
}

func (f *fakeCache) SetProducts(_ context.Context, catalog model.ProductCatalog) error {
	f.catalog = &catalog
	return nil
}

var gold = model.SpotPrice{
	Metal:    "Gold",
	Bid:      decimal.NewFromInt(2050),
	Ask:      decimal.NewFromInt(2070),
	Currency: model.CurrencyUSD,
}

func TestGetSpotPrice_MissFetchesAndCaches(t *testing.T) {
	api := &fakeApi{price: gold}
	c := &fakeCache{}
	svc := New(api, c)

	price, err := svc.GetSpotPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Bid.Equal(gold.Bid))
	require.NotNil(t, c.price)

	_, err = svc.GetSpotPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestRefreshSpotPrice_FailureKeepsCachedValue(t *testing.T) {
	api := &fakeApi{err: errors.New("timeout")}
	cached := gold
	c := &fakeCache{price: &cached}
	svc := New(api, c)

	err := svc.RefreshSpotPrice(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstream)

	price, err := svc.GetSpotPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Bid.Equal(gold.Bid))
}

func TestProxy_WrapsUpstreamErrors(t *testing.T) {
	svc := New(&fakeApi{err: errors.New("502")}, &fakeCache{})

	_, err := svc.ProxySpotPrices(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstream)
	_, err = svc.ProxyProducts(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstream)
}

func TestProxy_PassesBodyThrough(t *testing.T) {
	svc := New(&fakeApi{}, &fakeCache{})

	body, err := svc.ProxySpotPrices(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"Gold":{"bid":2050,"ask":2070}}`, string(body))
}

func TestGetProducts_AppendsCustomOption(t *testing.T) {
	api := &fakeApi{products: []model.Product{{ID: "1", Name: "Buffalo"}}}
	c := &fakeCache{}
	svc := New(api, c)
	fetchedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fetchedAt }

	catalog, err := svc.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{ID: "1", Name: "Buffalo"}, CustomProduct}, catalog.Products)
	assert.Equal(t, fetchedAt, catalog.FetchedAt)

	require.NotNil(t, c.catalog)
	assert.Len(t, c.catalog.Products, 1)
}

func TestRefreshProducts_FailureKeepsCatalog(t *testing.T) {
	old := model.ProductCatalog{Products: []model.Product{{ID: "1", Name: "Buffalo"}}}
	svc := New(&fakeApi{err: errors.New("down")}, &fakeCache{catalog: &old})

	_, err := svc.RefreshProducts(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstream)

	catalog, err := svc.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog.Products, 2)
}
