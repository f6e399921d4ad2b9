package marketService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/gold_tracker/data/cache"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
)

// CustomProduct is offered after the catalog for amounts that match no listed product.
var CustomProduct = model.Product{ID: "custom", Name: "Custom Amount"}

type PriceApi interface {
	RawSpotPrices(ctx context.Context) ([]byte, error)
	GetGoldSpotPrice(ctx context.Context) (model.SpotPrice, error)
	RawProducts(ctx context.Context) ([]byte, error)
	GetProducts(ctx context.Context) ([]model.Product, error)
}

type Cache interface {
	GetSpotPrice(ctx context.Context) (model.SpotPrice, error)
	SetSpotPrice(ctx context.Context, price model.SpotPrice) error
	GetProducts(ctx context.Context) (model.ProductCatalog, error)
	SetProducts(ctx context.Context, catalog model.ProductCatalog) error
}

type MarketService struct {
	api   PriceApi
	cache Cache
	now   func() time.Time
}

func New(api PriceApi, cache Cache) *MarketService {
	return &MarketService{
		api:   api,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetSpotPrice serves the cached quote and falls back to the upstream API on a miss.
func (s *MarketService) GetSpotPrice(ctx context.Context) (model.SpotPrice, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketService.GetSpotPrice"

	price, err := s.cache.GetSpotPrice(ctx)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Error("got error from cache.GetSpotPrice", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return s.fetchSpotPrice(ctx)
}

func (s *MarketService) fetchSpotPrice(ctx context.Context) (model.SpotPrice, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketService.fetchSpotPrice"

	price, err := s.api.GetGoldSpotPrice(ctx)
	if err != nil {
		slog.Error("got error from api.GetGoldSpotPrice", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SpotPrice{}, fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}

	if err = s.cache.SetSpotPrice(ctx, price); err != nil {
		slog.Warn("can't cache spot price", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
	return price, nil
}

// RefreshSpotPrice is the scheduler job. On failure the previously cached quote stays in place.
func (s *MarketService) RefreshSpotPrice(ctx context.Context) error {
	price, err := s.fetchSpotPrice(ctx)
	if err != nil {
		return err
	}

	slog.Info(
		"spot price refreshed",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("bid", price.Bid.String()),
		slog.String("ask", price.Ask.String()),
	)
	return nil
}

// ProxySpotPrices returns the upstream spot-price body untouched.
func (s *MarketService) ProxySpotPrices(ctx context.Context) ([]byte, error) {
	body, err := s.api.RawSpotPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}
	return body, nil
}

// ProxyProducts returns the upstream catalog body untouched.
func (s *MarketService) ProxyProducts(ctx context.Context) ([]byte, error) {
	body, err := s.api.RawProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}
	return body, nil
}

// GetProducts returns the cached catalog, fetching it on first use, with the custom option appended.
func (s *MarketService) GetProducts(ctx context.Context) (model.ProductCatalog, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketService.GetProducts"

	catalog, err := s.cache.GetProducts(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Error("got error from cache.GetProducts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		if catalog, err = s.RefreshProducts(ctx); err != nil {
			return model.ProductCatalog{}, err
		}
	}

	return withCustom(catalog), nil
}

// RefreshProducts refetches the catalog. On failure the cached one is kept.
func (s *MarketService) RefreshProducts(ctx context.Context) (model.ProductCatalog, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketService.RefreshProducts"

	slog.Debug("RefreshProducts start", slog.String("rqID", rqID), slog.String("op", op))

	products, err := s.api.GetProducts(ctx)
	if err != nil {
		slog.Error("got error from api.GetProducts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ProductCatalog{}, fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}

	catalog := model.ProductCatalog{Products: products, FetchedAt: s.now()}
	if err = s.cache.SetProducts(ctx, catalog); err != nil {
		slog.Warn("can't cache products", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Debug("RefreshProducts completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(products)))
	return catalog, nil
}

func withCustom(catalog model.ProductCatalog) model.ProductCatalog {
	products := make([]model.Product, 0, len(catalog.Products)+1)
	products = append(products, catalog.Products...)
	catalog.Products = append(products, CustomProduct)
	return catalog
}
