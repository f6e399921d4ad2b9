package pureApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/externalApi"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/pureModel"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	spotPricesPath = "/v1/spot-prices"
	productsPath   = "/v1/products"
	apiKeyHeader   = "x-api-key"
)

var productsQuery = map[string]string{
	"limit":        "100",
	"attributeIds": "9",
	"material":     "Gold",
}

type PureApi struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg *config.Config) *PureApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.PureApi.Url).
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, cfg.API.PureApi.ApiKey)

	limit := rate.Limit(cfg.API.PureApi.RateLimit)
	if cfg.API.PureApi.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &PureApi{
		client:  client,
		limiter: rate.NewLimiter(limit, max(int(cfg.API.PureApi.RateLimit), 1)),
	}
}

// get returns the raw body of a successful response.
func (a *PureApi) get(ctx context.Context, op, path string, params map[string]string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		slog.Error("error while dialing PureApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if resp.IsError() {
		slog.Error(
			"PureApi responded with error",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", resp.String()),
		)
		return nil, fmt.Errorf("%w: status %d", externalApi.ErrUpstream, resp.StatusCode())
	}

	return resp.Body(), nil
}

// RawSpotPrices returns the spot-price body as is, for passthrough.
func (a *PureApi) RawSpotPrices(ctx context.Context) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PureApi.RawSpotPrices"
	slog.Debug("start PureApi.RawSpotPrices request", slog.String("rqID", rqID), slog.String("op", op))

	body, err := a.get(ctx, op, spotPricesPath, nil)
	if err != nil {
		return nil, err
	}

	slog.Debug("PureApi.RawSpotPrices request complete", slog.String("rqID", rqID), slog.String("op", op))
	return body, nil
}

func (a *PureApi) GetGoldSpotPrice(ctx context.Context) (model.SpotPrice, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PureApi.GetGoldSpotPrice"

	body, err := a.RawSpotPrices(ctx)
	if err != nil {
		return model.SpotPrice{}, err
	}

	prices := pureModel.SpotPrices{}
	if err = json.Unmarshal(body, &prices); err != nil {
		slog.Error("can't unmarshall response into pureModel.SpotPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SpotPrice{}, fmt.Errorf("%w: %w", externalApi.ErrUpstream, err)
	}

	gold, ok := prices[pureModel.GoldMetal]
	if !ok {
		return model.SpotPrice{}, fmt.Errorf("%s quote: %w", pureModel.GoldMetal, externalApi.ErrNotFound)
	}

	return model.SpotPrice{
		Metal:    pureModel.GoldMetal,
		Bid:      gold.Bid,
		Ask:      gold.Ask,
		Currency: model.CurrencyUSD,
		AsOf:     time.Now().UTC(),
	}, nil
}

// RawProducts returns the gold catalog body as is, for passthrough.
func (a *PureApi) RawProducts(ctx context.Context) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PureApi.RawProducts"
	slog.Debug("start PureApi.RawProducts request", slog.String("rqID", rqID), slog.String("op", op))

	body, err := a.get(ctx, op, productsPath, productsQuery)
	if err != nil {
		return nil, err
	}

	slog.Debug("PureApi.RawProducts request complete", slog.String("rqID", rqID), slog.String("op", op))
	return body, nil
}

func (a *PureApi) GetProducts(ctx context.Context) ([]model.Product, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PureApi.GetProducts"

	body, err := a.RawProducts(ctx)
	if err != nil {
		return nil, err
	}

	var raw []pureModel.Product
	if err = json.Unmarshal(body, &raw); err != nil {
		slog.Error("can't unmarshall response into []pureModel.Product", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrUpstream, err)
	}

	res := make([]model.Product, 0, len(raw))
	for _, p := range raw {
		res = append(res, model.Product{ID: string(p.ID), Name: p.Title})
	}
	return res, nil
}
