package storeConverter

import (
	"fmt"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
)

const dateLayout = time.RFC3339Nano

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// parseDate also accepts bare dates as typed into a date input.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func ConvertPurchaseToStore(p model.PurchaseLot) storeModel.Purchase {
	methods := make([]string, 0, len(p.PaymentMethods))
	for _, m := range p.PaymentMethods {
		methods = append(methods, string(m))
	}
	effectivePerUnit := p.EffectivePricePerUnit
	effectiveTotal := p.EffectiveTotalPrice
	return storeModel.Purchase{
		ID:                    p.ID,
		Date:                  formatDate(p.Date),
		Amount:                p.Quantity,
		Unit:                  string(p.Unit),
		PricePerUnit:          p.PricePerUnit,
		EffectivePricePerUnit: &effectivePerUnit,
		Currency:              string(p.Currency),
		OrderNumber:           p.OrderNumber,
		Notes:                 p.Notes,
		GeneratedNotes:        p.Breakdown,
		TotalPrice:            p.TotalPrice,
		EffectiveTotalPrice:   &effectiveTotal,
		DiscountsApplied:      p.DiscountsApplied,
		PaymentMethods:        methods,
		OtherPaymentMethod:    p.OtherPaymentMethod,
		Source:                p.Source,
		ProductID:             p.ProductID,
		ProductName:           p.ProductName,
		CreatedAt:             formatDate(p.CreatedAt),
	}
}

func ConvertPurchase(p storeModel.Purchase) (model.PurchaseLot, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return model.PurchaseLot{}, err
	}
	createdAt, err := parseDate(p.CreatedAt)
	if err != nil {
		return model.PurchaseLot{}, err
	}

	var methods []model.PaymentMethod
	for _, m := range p.PaymentMethods {
		methods = append(methods, model.PaymentMethod(m))
	}

	// records saved before effective pricing existed cost their nominal price
	effectivePerUnit := p.PricePerUnit
	if p.EffectivePricePerUnit != nil {
		effectivePerUnit = *p.EffectivePricePerUnit
	}
	effectiveTotal := p.TotalPrice
	if p.EffectiveTotalPrice != nil {
		effectiveTotal = *p.EffectiveTotalPrice
	}

	return model.PurchaseLot{
		ID:                    p.ID,
		Date:                  date,
		Quantity:              p.Amount,
		Unit:                  model.Unit(p.Unit),
		PricePerUnit:          p.PricePerUnit,
		EffectivePricePerUnit: effectivePerUnit,
		Currency:              model.Currency(p.Currency),
		TotalPrice:            p.TotalPrice,
		EffectiveTotalPrice:   effectiveTotal,
		DiscountsApplied:      p.DiscountsApplied,
		Notes:                 p.Notes,
		Breakdown:             p.GeneratedNotes,
		Source:                p.Source,
		OrderNumber:           p.OrderNumber,
		PaymentMethods:        methods,
		OtherPaymentMethod:    p.OtherPaymentMethod,
		ProductID:             p.ProductID,
		ProductName:           p.ProductName,
		CreatedAt:             createdAt,
	}, nil
}

func ConvertSaleToStore(s model.SaleRecord) storeModel.Sale {
	allocs := make([]storeModel.PurchaseAllocation, 0, len(s.Allocations))
	for _, a := range s.Allocations {
		allocs = append(allocs, storeModel.PurchaseAllocation{
			PurchaseID:       a.LotID,
			PurchaseDate:     formatDate(a.LotDate),
			Amount:           a.Quantity,
			CostBasisPerUnit: a.CostBasisPerUnit,
			CostBasis:        a.CostBasis,
		})
	}

	return storeModel.Sale{
		ID:                     s.ID,
		Date:                   formatDate(s.Date),
		Amount:                 s.Quantity,
		Unit:                   string(s.Unit),
		PricePerUnit:           s.PricePerUnit,
		Currency:               string(s.Currency),
		Buyer:                  s.Buyer,
		OrderNumber:            s.OrderNumber,
		Notes:                  s.Notes,
		GeneratedNotes:         s.Breakdown,
		TotalPrice:             s.TotalPrice,
		OriginalPurchasePrice:  s.OriginalPurchasePrice,
		EffectivePurchasePrice: s.TotalCostBasis,
		Fees:                   s.TotalFees,
		FeeDetails: &storeModel.FeeDetails{
			Shipping:          s.Fees.Shipping,
			SellerFee:         s.Fees.Marketplace,
			PaymentProcessing: s.Fees.PaymentProcessing,
			OtherName:         s.Fees.OtherName,
			Other:             s.Fees.Other,
		},
		Profit:              s.Profit,
		ProfitPercentage:    s.ProfitPercentage,
		PurchaseAllocations: allocs,
		CreatedAt:           formatDate(s.CreatedAt),
		UpdatedAt:           formatDate(s.UpdatedAt),
	}
}

func ConvertSale(s storeModel.Sale) (model.SaleRecord, error) {
	date, err := parseDate(s.Date)
	if err != nil {
		return model.SaleRecord{}, err
	}
	createdAt, err := parseDate(s.CreatedAt)
	if err != nil {
		return model.SaleRecord{}, err
	}
	updatedAt, err := parseDate(s.UpdatedAt)
	if err != nil {
		return model.SaleRecord{}, err
	}

	var allocs []model.LotAllocation
	for _, a := range s.PurchaseAllocations {
		lotDate, err := parseDate(a.PurchaseDate)
		if err != nil {
			return model.SaleRecord{}, err
		}
		allocs = append(allocs, model.LotAllocation{
			LotID:            a.PurchaseID,
			LotDate:          lotDate,
			Quantity:         a.Amount,
			CostBasisPerUnit: a.CostBasisPerUnit,
			CostBasis:        a.CostBasis,
		})
	}

	if len(allocs) == 0 && s.PurchaseID != "" {
		legacy, err := legacyAllocation(s)
		if err != nil {
			return model.SaleRecord{}, err
		}
		allocs = append(allocs, legacy)
	}

	res := model.SaleRecord{
		ID:                    s.ID,
		Date:                  date,
		Quantity:              s.Amount,
		Unit:                  model.Unit(s.Unit),
		PricePerUnit:          s.PricePerUnit,
		Currency:              model.Currency(s.Currency),
		Buyer:                 s.Buyer,
		OrderNumber:           s.OrderNumber,
		Notes:                 s.Notes,
		Breakdown:             s.GeneratedNotes,
		TotalPrice:            s.TotalPrice,
		OriginalPurchasePrice: s.OriginalPurchasePrice,
		TotalCostBasis:        s.EffectivePurchasePrice,
		TotalFees:             s.Fees,
		Profit:                s.Profit,
		ProfitPercentage:      s.ProfitPercentage,
		Allocations:           allocs,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
	if s.FeeDetails != nil {
		res.Fees = model.SaleFees{
			Shipping:          s.FeeDetails.Shipping,
			Marketplace:       s.FeeDetails.SellerFee,
			PaymentProcessing: s.FeeDetails.PaymentProcessing,
			OtherName:         s.FeeDetails.OtherName,
			Other:             s.FeeDetails.Other,
		}
	}
	return res, nil
}

// legacyAllocation treats a single-purchase sale as one allocation of its whole quantity.
func legacyAllocation(s storeModel.Sale) (model.LotAllocation, error) {
	lotDate, err := parseDate(s.PurchaseDate)
	if err != nil {
		return model.LotAllocation{}, err
	}
	alloc := model.LotAllocation{
		LotID:     s.PurchaseID,
		LotDate:   lotDate,
		Quantity:  s.Amount,
		CostBasis: s.EffectivePurchasePrice,
	}
	if s.Amount.IsPositive() {
		alloc.CostBasisPerUnit = s.EffectivePurchasePrice.Div(s.Amount)
	}
	return alloc, nil
}

func ConvertFeeSettingsToStore(fs model.FeeSettings) storeModel.FeeSettings {
	return storeModel.FeeSettings{
		SurchargeRate:        fs.SurchargeRate,
		MembershipRebateRate: fs.MembershipRebateRate,
		MarketplaceFeeRate:   fs.MarketplaceFeeRate,
	}
}

func ConvertFeeSettings(fs storeModel.FeeSettings) model.FeeSettings {
	return model.FeeSettings{
		SurchargeRate:        fs.SurchargeRate,
		MembershipRebateRate: fs.MembershipRebateRate,
		MarketplaceFeeRate:   fs.MarketplaceFeeRate,
	}
}
