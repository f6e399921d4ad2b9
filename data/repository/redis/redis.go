package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/redis/go-redis/v9"
)

const scanCount = 100

type Redis struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedis(redisClient *redis.Client, cfg *config.Config) *Redis {
	return &Redis{redis: redisClient, cfg: cfg}
}

func (r *Redis) key(key string) string {
	return r.cfg.Storage.KeyPrefix + key
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Redis.Load"
	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	res, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			slog.Debug("Load: key not found", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
			return nil, repository.ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("Load completed", slog.String("rqID", rqID), slog.String("op", op))
	return res, nil
}

func (r *Redis) Save(ctx context.Context, key string, payload []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Redis.Save"
	slog.Debug("Save start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.Int("size", len(payload)))

	if err := r.redis.Set(ctx, r.key(key), payload, 0).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Save completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Redis.Delete"

	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Delete completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	return nil
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Redis.Keys"
	slog.Debug("Keys start", slog.String("rqID", rqID), slog.String("op", op))

	prefix := r.cfg.Storage.KeyPrefix
	var keys []string

	iter := r.redis.Scan(ctx, 0, prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed on redis.Scan", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("Keys completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(keys)))
	return keys, nil
}
