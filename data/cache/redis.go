package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

const (
	spotPriceKey = "spotPrice:gold"
	productsKey  = "products:gold"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) key(key string) string {
	return r.cfg.Cache.KeyPrefix + key
}

func (r *RedisCache) set(ctx context.Context, op, key string, v any, exp time.Duration) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("can't marshall value", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return errors.New("can't marshall value")
	}

	if err = r.redis.Set(ctx, r.key(key), raw, exp).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (r *RedisCache) get(ctx context.Context, op, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	if err = json.Unmarshal(res, dest); err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", string(res)),
		)
		return ErrMiss
	}
	return nil
}

func (r *RedisCache) SetSpotPrice(ctx context.Context, price model.SpotPrice) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetSpotPrice"
	slog.Debug("SetSpotPrice start", slog.String("rqID", rqID), slog.String("op", op))

	if err := r.set(ctx, op, spotPriceKey, price, r.cfg.Cache.SpotPriceExpiration); err != nil {
		return err
	}

	slog.Debug("SetSpotPrice completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// GetSpotPrice returns ErrMiss when no price was cached yet or it expired.
func (r *RedisCache) GetSpotPrice(ctx context.Context) (model.SpotPrice, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetSpotPrice"
	slog.Debug("GetSpotPrice start", slog.String("rqID", rqID), slog.String("op", op))

	var price model.SpotPrice
	if err := r.get(ctx, op, spotPriceKey, &price); err != nil {
		return model.SpotPrice{}, err
	}

	slog.Debug("GetSpotPrice finished", slog.String("rqID", rqID), slog.String("op", op))
	return price, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, catalog model.ProductCatalog) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetProducts"
	slog.Debug("SetProducts start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(catalog.Products)))

	if err := r.set(ctx, op, productsKey, catalog, r.cfg.Cache.ProductsExpiration); err != nil {
		return err
	}

	slog.Debug("SetProducts completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (r *RedisCache) GetProducts(ctx context.Context) (model.ProductCatalog, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetProducts"
	slog.Debug("GetProducts start", slog.String("rqID", rqID), slog.String("op", op))

	var catalog model.ProductCatalog
	if err := r.get(ctx, op, productsKey, &catalog); err != nil {
		return model.ProductCatalog{}, err
	}

	slog.Debug("GetProducts finished", slog.String("rqID", rqID), slog.String("op", op))
	return catalog, nil
}
