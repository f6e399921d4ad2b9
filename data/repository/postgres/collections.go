package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/utils"
)

type collectionRow struct {
	Key       string    `db:"key"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p *Postgres) key(key string) string {
	return p.cfg.Storage.KeyPrefix + key
}

// Load reads a collection snapshot. Inside a transaction the row is locked
// until commit so concurrent writers queue behind each other.
func (p *Postgres) Load(ctx context.Context, key string) (payload []byte, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.Load"
	query := `SELECT key, payload, updated_at FROM ledger_collections WHERE key = $1`
	if p.extractTx(ctx) != nil {
		query += ` FOR UPDATE`
	}

	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("Load failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Load completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var row collectionRow
	err = p.txOrDb(ctx).GetContext(ctx, &row, query, p.key(key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return row.Payload, nil
}

func (p *Postgres) Save(ctx context.Context, key string, payload []byte) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.Save"
	query := `
		INSERT INTO ledger_collections (key, payload, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`

	slog.Debug("Save start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.Int("size", len(payload)))
	defer func() {
		if err != nil {
			slog.Error("Save failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Save completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = p.txOrDb(ctx).ExecContext(ctx, query, p.key(key), string(payload))
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.Delete"
	query := `DELETE FROM ledger_collections WHERE key = $1`

	slog.Debug("Delete start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	defer func() {
		if err != nil {
			slog.Error("Delete failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Delete completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = p.txOrDb(ctx).ExecContext(ctx, query, p.key(key))
	return err
}

func (p *Postgres) Keys(ctx context.Context) (keys []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.Keys"
	query := `SELECT key FROM ledger_collections WHERE key LIKE $1 ORDER BY key`

	slog.Debug("Keys start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("Keys failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Keys completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(keys)))
		}
	}()

	var raw []string
	err = p.txOrDb(ctx).SelectContext(ctx, &raw, query, escapeLike(p.cfg.Storage.KeyPrefix)+"%")
	if err != nil {
		return nil, err
	}

	keys = make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, p.cfg.Storage.KeyPrefix))
	}
	return keys, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
