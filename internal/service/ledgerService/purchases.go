package ledgerService

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/discount"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/shopspring/decimal"
)

type PurchaseInput struct {
	Date         time.Time
	Quantity     string
	PricePerUnit string
	Unit         string
	Currency     string
	Source       string
	OrderNumber  string
	Notes        string
	ProductID    string
	ProductName  string
	Discounts    discount.Selection
}

type PurchasePreview struct {
	Quantity              decimal.Decimal
	PricePerUnit          decimal.Decimal
	TotalPrice            decimal.Decimal
	EffectiveTotalPrice   decimal.Decimal
	EffectivePricePerUnit decimal.Decimal
	Lines                 []discount.Line
	Breakdown             string
}

type parsedPurchase struct {
	quantity decimal.Decimal
	price    decimal.Decimal
	unit     model.Unit
	currency model.Currency
	methods  []model.PaymentMethod
}

func parsePurchase(in PurchaseInput) (parsedPurchase, error) {
	var (
		p   parsedPurchase
		err error
	)

	if p.quantity, err = parseAmount("quantity", in.Quantity, true); err != nil {
		return p, err
	}
	if !p.quantity.IsPositive() {
		return p, service.NewValidationError("quantity", "must be greater than zero")
	}
	if p.price, err = parseAmount("pricePerUnit", in.PricePerUnit, true); err != nil {
		return p, err
	}
	if p.unit, p.currency, err = parseUnitCurrency(in.Unit, in.Currency); err != nil {
		return p, err
	}

	for _, m := range discount.PaymentMethods() {
		if slices.Contains(in.Discounts.PaymentMethods, m) {
			p.methods = append(p.methods, m)
		}
	}
	for _, m := range in.Discounts.PaymentMethods {
		if _, ok := discount.RebateRate(m); !ok {
			return p, service.NewValidationError("paymentMethods", fmt.Sprintf("unknown payment method %q", m))
		}
	}

	return p, nil
}

func preview(p parsedPurchase, sel discount.Selection, settings model.FeeSettings) PurchasePreview {
	total := p.quantity.Mul(p.price)
	res := discount.Apply(total, sel, settings, p.currency)
	return PurchasePreview{
		Quantity:              p.quantity,
		PricePerUnit:          p.price,
		TotalPrice:            total,
		EffectiveTotalPrice:   res.Effective,
		EffectivePricePerUnit: res.Effective.Div(p.quantity),
		Lines:                 res.Lines,
		Breakdown:             res.Breakdown,
	}
}

// PreviewPurchase prices form input without persisting anything. Unlike
// CreatePurchase it reports a negative effective price instead of rejecting it.
func (s *LedgerService) PreviewPurchase(ctx context.Context, in PurchaseInput) (PurchasePreview, error) {
	p, err := parsePurchase(in)
	if err != nil {
		return PurchasePreview{}, err
	}

	settings, err := s.repo.FeeSettings(ctx)
	if err != nil {
		return PurchasePreview{}, err
	}

	return preview(p, in.Discounts, settings), nil
}

func (s *LedgerService) CreatePurchase(ctx context.Context, in PurchaseInput) (lot model.PurchaseLot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.CreatePurchase"

	slog.Debug("CreatePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("quantity", in.Quantity), slog.String("price", in.PricePerUnit))
	defer func() {
		if err != nil {
			slog.Warn("CreatePurchase rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("lotID", lot.ID))
		}
	}()

	p, err := parsePurchase(in)
	if err != nil {
		return model.PurchaseLot{}, err
	}

	err = s.mutate(ctx, func(ctx context.Context) error {
		settings, err := s.repo.FeeSettings(ctx)
		if err != nil {
			return err
		}

		pv := preview(p, in.Discounts, settings)
		if pv.EffectiveTotalPrice.IsNegative() {
			return service.NewValidationError("discounts", "adjustments make the effective price negative")
		}

		lots, err := s.repo.Purchases(ctx)
		if err != nil {
			return err
		}

		lot = model.PurchaseLot{
			ID:                    s.newID(),
			Date:                  s.dateOrNow(in.Date),
			Quantity:              p.quantity,
			Unit:                  p.unit,
			PricePerUnit:          p.price,
			EffectivePricePerUnit: pv.EffectivePricePerUnit,
			Currency:              p.currency,
			TotalPrice:            pv.TotalPrice,
			EffectiveTotalPrice:   pv.EffectiveTotalPrice,
			DiscountsApplied:      !pv.EffectiveTotalPrice.Equal(pv.TotalPrice),
			Notes:                 in.Notes,
			Breakdown:             pv.Breakdown,
			Source:                in.Source,
			OrderNumber:           in.OrderNumber,
			PaymentMethods:        p.methods,
			OtherPaymentMethod:    in.Discounts.OtherPaymentMethod,
			ProductID:             in.ProductID,
			ProductName:           in.ProductName,
			CreatedAt:             s.now(),
		}

		return s.repo.SavePurchases(ctx, append([]model.PurchaseLot{lot}, lots...))
	})
	if err != nil {
		return model.PurchaseLot{}, err
	}

	return lot, nil
}

// DeletePurchase removes a lot no sale has drawn from.
func (s *LedgerService) DeletePurchase(ctx context.Context, lotID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.DeletePurchase"

	slog.Debug("DeletePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("lotID", lotID))
	defer func() {
		slog.Debug("DeletePurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("lotID", lotID))
	}()

	return s.mutate(ctx, func(ctx context.Context) error {
		lots, err := s.repo.Purchases(ctx)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(lots, func(l model.PurchaseLot) bool { return l.ID == lotID })
		if idx < 0 {
			return service.ErrNotFound
		}

		sales, err := s.repo.Sales(ctx)
		if err != nil {
			return err
		}
		for _, sale := range sales {
			for _, alloc := range sale.Allocations {
				if alloc.LotID == lotID {
					return service.ErrLotInUse
				}
			}
		}

		return s.repo.SavePurchases(ctx, slices.Delete(lots, idx, idx+1))
	})
}
