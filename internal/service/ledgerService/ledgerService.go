package ledgerService

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	Purchases(ctx context.Context) ([]model.PurchaseLot, error)
	SavePurchases(ctx context.Context, lots []model.PurchaseLot) error
	Sales(ctx context.Context) ([]model.SaleRecord, error)
	SaveSales(ctx context.Context, sales []model.SaleRecord) error
	FeeSettings(ctx context.Context) (model.FeeSettings, error)
	SaveFeeSettings(ctx context.Context, fs model.FeeSettings) error
	Backup(ctx context.Context) (map[string]json.RawMessage, error)
	Restore(ctx context.Context, snapshot map[string]json.RawMessage) error
}

type SpotPriceProvider interface {
	GetSpotPrice(ctx context.Context) (model.SpotPrice, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.LedgerReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// LedgerService owns every mutation of the purchase and sale collections.
// Mutations are serialized in-process; stores that support transactions
// additionally make each read-modify-write atomic across processes.
type LedgerService struct {
	cfg       *config.Config
	repo      Repository
	spot      SpotPriceProvider
	reportGen ReportGenerator
	cloud     CloudStorage

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// New wires the service. cloud may be nil when report upload is not configured.
func New(cfg *config.Config, repo Repository, spot SpotPriceProvider, reportGen ReportGenerator, cloud CloudStorage) *LedgerService {
	return &LedgerService{
		cfg:       cfg,
		repo:      repo,
		spot:      spot,
		reportGen: reportGen,
		cloud:     cloud,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// mutate runs fn under the service lock and inside a store transaction.
func (s *LedgerService) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.WithinTransaction(ctx, fn)
}

func (s *LedgerService) ListPurchases(ctx context.Context) ([]model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ListPurchases"

	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		slog.Error("got error from repo.Purchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	return lots, nil
}

func (s *LedgerService) ListSales(ctx context.Context) ([]model.SaleRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ListSales"

	sales, err := s.repo.Sales(ctx)
	if err != nil {
		slog.Error("got error from repo.Sales", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	return sales, nil
}

func (s *LedgerService) GetFeeSettings(ctx context.Context) (model.FeeSettings, error) {
	return s.repo.FeeSettings(ctx)
}

// SaveFeeSettings only affects records created afterwards.
func (s *LedgerService) SaveFeeSettings(ctx context.Context, fs model.FeeSettings) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.SaveFeeSettings"

	slog.Debug("SaveFeeSettings start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("settings", fs))
	defer func() {
		slog.Debug("SaveFeeSettings finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	rates := map[string]decimal.Decimal{
		"surchargeRate":        fs.SurchargeRate,
		"membershipRebateRate": fs.MembershipRebateRate,
		"marketplaceFeeRate":   fs.MarketplaceFeeRate,
	}
	for field, rate := range rates {
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return service.NewValidationError(field, "must be a fraction between 0 and 1")
		}
	}

	return s.mutate(ctx, func(ctx context.Context) error {
		return s.repo.SaveFeeSettings(ctx, fs)
	})
}

// parseAmount reads a user-typed non-negative number. Empty input is zero
// unless the field is required.
func parseAmount(field, raw string, required bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return decimal.Zero, service.NewValidationError(field, "is required")
		}
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, service.NewValidationError(field, "must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, service.NewValidationError(field, "must not be negative")
	}
	return d, nil
}

func parseUnitCurrency(unit, currency string) (model.Unit, model.Currency, error) {
	u, err := model.ParseUnit(unit)
	if err != nil {
		return "", "", service.NewValidationError("unit", err.Error())
	}
	c, err := model.ParseCurrency(currency)
	if err != nil {
		return "", "", service.NewValidationError("currency", err.Error())
	}
	return u, c, nil
}

func (s *LedgerService) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
