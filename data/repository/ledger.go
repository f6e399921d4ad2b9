package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/gold_tracker/internal/converter/storeConverter"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/KotFed0t/gold_tracker/utils"
)

const (
	PurchasesKey   = "purchases"
	SalesKey       = "sales"
	FeeSettingsKey = "feeSettings"
)

// Ledger reads and writes whole collections. Every save is a full snapshot.
type Ledger struct {
	store       Store
	feeDefaults model.FeeSettings
}

func NewLedger(store Store, feeDefaults model.FeeSettings) *Ledger {
	return &Ledger{store: store, feeDefaults: feeDefaults}
}

// WithinTransaction makes tFunc atomic when the store supports it and just runs it otherwise.
func (l *Ledger) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	if tx, ok := l.store.(Transactor); ok {
		return tx.WithinTransaction(ctx, tFunc)
	}
	return tFunc(ctx)
}

// load returns false when the key is absent or its payload is malformed.
func (l *Ledger) load(ctx context.Context, key string, dest any) (bool, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := l.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}

	if err = json.Unmarshal(raw, dest); err != nil {
		slog.Error(
			"malformed collection, treating as empty",
			slog.String("rqID", rqID),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

func (l *Ledger) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err = l.store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Purchases returns the lots most recent first, as stored.
func (l *Ledger) Purchases(ctx context.Context) ([]model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Ledger.Purchases"
	slog.Debug("Purchases start", slog.String("rqID", rqID), slog.String("op", op))

	var stored []storeModel.Purchase
	ok, err := l.load(ctx, PurchasesKey, &stored)
	if err != nil || !ok {
		return []model.PurchaseLot{}, err
	}

	res := make([]model.PurchaseLot, 0, len(stored))
	for _, s := range stored {
		lot, err := storeConverter.ConvertPurchase(s)
		if err != nil {
			slog.Error("malformed purchases, treating as empty", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return []model.PurchaseLot{}, nil
		}
		res = append(res, lot)
	}

	slog.Debug("Purchases completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(res)))
	return res, nil
}

func (l *Ledger) SavePurchases(ctx context.Context, lots []model.PurchaseLot) error {
	stored := make([]storeModel.Purchase, 0, len(lots))
	for _, lot := range lots {
		stored = append(stored, storeConverter.ConvertPurchaseToStore(lot))
	}
	return l.save(ctx, PurchasesKey, stored)
}

func (l *Ledger) Sales(ctx context.Context) ([]model.SaleRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Ledger.Sales"
	slog.Debug("Sales start", slog.String("rqID", rqID), slog.String("op", op))

	var stored []storeModel.Sale
	ok, err := l.load(ctx, SalesKey, &stored)
	if err != nil || !ok {
		return []model.SaleRecord{}, err
	}

	res := make([]model.SaleRecord, 0, len(stored))
	for _, s := range stored {
		sale, err := storeConverter.ConvertSale(s)
		if err != nil {
			slog.Error("malformed sales, treating as empty", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return []model.SaleRecord{}, nil
		}
		res = append(res, sale)
	}

	slog.Debug("Sales completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(res)))
	return res, nil
}

func (l *Ledger) SaveSales(ctx context.Context, sales []model.SaleRecord) error {
	stored := make([]storeModel.Sale, 0, len(sales))
	for _, sale := range sales {
		stored = append(stored, storeConverter.ConvertSaleToStore(sale))
	}
	return l.save(ctx, SalesKey, stored)
}

// FeeSettings falls back to the configured defaults when nothing usable is stored.
func (l *Ledger) FeeSettings(ctx context.Context) (model.FeeSettings, error) {
	var stored storeModel.FeeSettings
	ok, err := l.load(ctx, FeeSettingsKey, &stored)
	if err != nil || !ok {
		return l.feeDefaults, err
	}
	return storeConverter.ConvertFeeSettings(stored), nil
}

func (l *Ledger) SaveFeeSettings(ctx context.Context, fs model.FeeSettings) error {
	return l.save(ctx, FeeSettingsKey, storeConverter.ConvertFeeSettingsToStore(fs))
}

// Backup returns the raw payload of every stored key.
func (l *Ledger) Backup(ctx context.Context) (map[string]json.RawMessage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Ledger.Backup"
	slog.Debug("Backup start", slog.String("rqID", rqID), slog.String("op", op))

	keys, err := l.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	res := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		raw, err := l.store.Load(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		res[key] = raw
	}

	slog.Debug("Backup completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("keys", len(res)))
	return res, nil
}

// Restore replaces the whole store with snapshot. Every collection is decoded
// before anything is written; keys absent from snapshot are deleted.
func (l *Ledger) Restore(ctx context.Context, snapshot map[string]json.RawMessage) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Ledger.Restore"
	slog.Debug("Restore start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("keys", len(snapshot)))

	for key, raw := range snapshot {
		if err := validateCollection(key, raw); err != nil {
			return err
		}
	}

	existing, err := l.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	for _, key := range existing {
		if _, ok := snapshot[key]; ok {
			continue
		}
		if err = l.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	for key, raw := range snapshot {
		if err = l.store.Save(ctx, key, raw); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	slog.Info("ledger restored", slog.String("rqID", rqID), slog.String("op", op), slog.Int("keys", len(snapshot)), slog.Int("previousKeys", len(existing)))
	return nil
}

func validateCollection(key string, raw json.RawMessage) error {
	switch key {
	case PurchasesKey:
		var stored []storeModel.Purchase
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, key, err)
		}
		for _, s := range stored {
			if _, err := storeConverter.ConvertPurchase(s); err != nil {
				return fmt.Errorf("%w: %s %s: %v", ErrMalformedSnapshot, key, s.ID, err)
			}
		}
	case SalesKey:
		var stored []storeModel.Sale
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, key, err)
		}
		for _, s := range stored {
			if _, err := storeConverter.ConvertSale(s); err != nil {
				return fmt.Errorf("%w: %s %s: %v", ErrMalformedSnapshot, key, s.ID, err)
			}
		}
	case FeeSettingsKey:
		var stored storeModel.FeeSettings
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, key, err)
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrMalformedSnapshot, key)
	}
	return nil
}
