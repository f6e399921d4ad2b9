package ledgerService

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/allocation"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/profit"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/shopspring/decimal"
)

type AllocationInput struct {
	LotID    string
	Quantity string
}

type FeeInput struct {
	Shipping           string
	MarketplaceFee     string
	UseMarketplaceRate bool
	PaymentProcessing  string
	OtherEnabled       bool
	OtherName          string
	Other              string
}

type SaleInput struct {
	Date         time.Time
	PricePerUnit string
	Unit         string
	Currency     string
	Buyer        string
	OrderNumber  string
	Notes        string
	Fees         FeeInput
	Allocations  []AllocationInput
}

type SalePreview struct {
	profit.Result
	Allocations           []model.LotAllocation
	OriginalPurchasePrice decimal.Decimal
}

type parsedSale struct {
	price    decimal.Decimal
	unit     model.Unit
	currency model.Currency
	fees     profit.FeeInput
	requests []allocation.Request
}

func parseSale(in SaleInput) (parsedSale, error) {
	var (
		p   parsedSale
		err error
	)

	if p.price, err = parseAmount("pricePerUnit", in.PricePerUnit, true); err != nil {
		return p, err
	}
	if p.unit, p.currency, err = parseUnitCurrency(in.Unit, in.Currency); err != nil {
		return p, err
	}

	p.fees = profit.FeeInput{
		UseMarketplaceRate: in.Fees.UseMarketplaceRate,
		OtherEnabled:       in.Fees.OtherEnabled,
		OtherName:          in.Fees.OtherName,
	}
	if p.fees.Shipping, err = parseAmount("fees.shipping", in.Fees.Shipping, false); err != nil {
		return p, err
	}
	if p.fees.MarketplaceFee, err = parseAmount("fees.marketplaceFee", in.Fees.MarketplaceFee, false); err != nil {
		return p, err
	}
	if p.fees.PaymentProcessing, err = parseAmount("fees.paymentProcessing", in.Fees.PaymentProcessing, false); err != nil {
		return p, err
	}
	if in.Fees.OtherEnabled {
		if p.fees.Other, err = parseAmount("fees.other", in.Fees.Other, false); err != nil {
			return p, err
		}
	}

	for _, a := range in.Allocations {
		qty, err := parseAmount("allocations.quantity", a.Quantity, true)
		if err != nil {
			return p, err
		}
		p.requests = append(p.requests, allocation.Request{LotID: a.LotID, Quantity: qty})
	}

	return p, nil
}

// allocationErr translates resolver failures into the service taxonomy.
func allocationErr(err error) error {
	var allocErr *allocation.Error
	switch {
	case errors.Is(err, allocation.ErrNoAllocations):
		return service.NewValidationError("allocations", "at least one lot is required")
	case errors.Is(err, allocation.ErrInvalidQuantity):
		return service.NewValidationError("allocations.quantity", "must be greater than zero")
	case errors.Is(err, allocation.ErrDuplicateLot):
		return service.NewValidationError("allocations", "a lot can be used only once per sale")
	case errors.Is(err, allocation.ErrLotNotFound):
		return service.NewValidationError("allocations.lotId", "purchase not found")
	case errors.As(err, &allocErr):
		return &service.AllocationError{
			LotID:     allocErr.LotID,
			Requested: allocErr.Requested,
			Available: allocErr.Available,
			Msg:       allocErr.Error(),
		}
	}
	return err
}

// buildSale resolves allocations and prices the sale. editingSaleID is empty
// for new sales and must name a stored sale otherwise.
func (s *LedgerService) buildSale(ctx context.Context, p parsedSale, in SaleInput, editingSaleID string) (model.SaleRecord, []model.SaleRecord, error) {
	settings, err := s.repo.FeeSettings(ctx)
	if err != nil {
		return model.SaleRecord{}, nil, err
	}
	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return model.SaleRecord{}, nil, err
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return model.SaleRecord{}, nil, err
	}
	if editingSaleID != "" && !slices.ContainsFunc(sales, func(r model.SaleRecord) bool { return r.ID == editingSaleID }) {
		return model.SaleRecord{}, nil, service.ErrNotFound
	}

	resolver := allocation.NewResolver(lots, sales)
	allocs, err := resolver.Resolve(p.requests, editingSaleID)
	if err != nil {
		return model.SaleRecord{}, nil, allocationErr(err)
	}

	calc := profit.Calculate(profit.Input{
		Allocations:  allocs,
		PricePerUnit: p.price,
		Unit:         p.unit,
		Currency:     p.currency,
		Fees:         p.fees,
	}, settings)

	sale := model.SaleRecord{
		Date:                  s.dateOrNow(in.Date),
		Quantity:              calc.Quantity,
		Unit:                  p.unit,
		PricePerUnit:          p.price,
		Currency:              p.currency,
		Buyer:                 in.Buyer,
		OrderNumber:           in.OrderNumber,
		Notes:                 in.Notes,
		Breakdown:             calc.Breakdown,
		TotalPrice:            calc.TotalPrice,
		OriginalPurchasePrice: resolver.OriginalCost(allocs),
		TotalCostBasis:        calc.TotalCostBasis,
		Fees:                  calc.Fees,
		TotalFees:             calc.TotalFees,
		Profit:                calc.Profit,
		ProfitPercentage:      calc.ProfitPercentage,
		Allocations:           allocs,
		UpdatedAt:             s.now(),
	}
	return sale, sales, nil
}

func (s *LedgerService) CreateSale(ctx context.Context, in SaleInput) (sale model.SaleRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.CreateSale"

	slog.Debug("CreateSale start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("allocations", len(in.Allocations)))
	defer func() {
		if err != nil {
			slog.Warn("CreateSale rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateSale finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("saleID", sale.ID))
		}
	}()

	p, err := parseSale(in)
	if err != nil {
		return model.SaleRecord{}, err
	}

	err = s.mutate(ctx, func(ctx context.Context) error {
		built, sales, err := s.buildSale(ctx, p, in, "")
		if err != nil {
			return err
		}

		built.ID = s.newID()
		built.CreatedAt = built.UpdatedAt
		sale = built

		return s.repo.SaveSales(ctx, append([]model.SaleRecord{sale}, sales...))
	})
	if err != nil {
		return model.SaleRecord{}, err
	}

	return sale, nil
}

// UpdateSale replaces a sale's allocations and recalculates it in place. The
// sale's own previous allocations do not count against availability.
func (s *LedgerService) UpdateSale(ctx context.Context, saleID string, in SaleInput) (sale model.SaleRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.UpdateSale"

	slog.Debug("UpdateSale start", slog.String("rqID", rqID), slog.String("op", op), slog.String("saleID", saleID))
	defer func() {
		if err != nil {
			slog.Warn("UpdateSale rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateSale finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("saleID", saleID))
		}
	}()

	p, err := parseSale(in)
	if err != nil {
		return model.SaleRecord{}, err
	}

	err = s.mutate(ctx, func(ctx context.Context) error {
		built, sales, err := s.buildSale(ctx, p, in, saleID)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(sales, func(r model.SaleRecord) bool { return r.ID == saleID })
		if idx < 0 {
			return service.ErrNotFound
		}

		built.ID = saleID
		built.CreatedAt = sales[idx].CreatedAt
		sales[idx] = built
		sale = built

		return s.repo.SaveSales(ctx, sales)
	})
	if err != nil {
		return model.SaleRecord{}, err
	}

	return sale, nil
}

// DeleteSale frees the sale's allocated quantity back to its lots.
func (s *LedgerService) DeleteSale(ctx context.Context, saleID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.DeleteSale"

	slog.Debug("DeleteSale start", slog.String("rqID", rqID), slog.String("op", op), slog.String("saleID", saleID))
	defer func() {
		slog.Debug("DeleteSale finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("saleID", saleID))
	}()

	return s.mutate(ctx, func(ctx context.Context) error {
		sales, err := s.repo.Sales(ctx)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(sales, func(r model.SaleRecord) bool { return r.ID == saleID })
		if idx < 0 {
			return service.ErrNotFound
		}

		return s.repo.SaveSales(ctx, slices.Delete(sales, idx, idx+1))
	})
}

// PreviewSale is the lenient live calculation behind the sale form: no
// availability checks, and lots that no longer exist cost nothing.
func (s *LedgerService) PreviewSale(ctx context.Context, in SaleInput) (SalePreview, error) {
	p, err := parseSale(in)
	if err != nil {
		return SalePreview{}, err
	}

	settings, err := s.repo.FeeSettings(ctx)
	if err != nil {
		return SalePreview{}, err
	}
	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return SalePreview{}, err
	}

	resolver := allocation.NewResolver(lots, nil)
	allocs := resolver.Draft(p.requests)

	calc := profit.Calculate(profit.Input{
		Allocations:  allocs,
		PricePerUnit: p.price,
		Unit:         p.unit,
		Currency:     p.currency,
		Fees:         p.fees,
	}, settings)

	return SalePreview{
		Result:                calc,
		Allocations:           allocs,
		OriginalPurchasePrice: resolver.OriginalCost(allocs),
	}, nil
}

// AvailableLots lists lots that still have quantity to sell.
func (s *LedgerService) AvailableLots(ctx context.Context) ([]model.LotAvailability, error) {
	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return nil, err
	}
	return allocation.NewResolver(lots, sales).AvailableLots(), nil
}
