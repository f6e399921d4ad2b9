package restConverter

import (
	"strings"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/converter/storeConverter"
	"github.com/KotFed0t/gold_tracker/internal/discount"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/restModel"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/KotFed0t/gold_tracker/internal/service/ledgerService"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date or an RFC 3339 timestamp. Empty means today.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, service.NewValidationError("date", "must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}

func ConvertPurchaseRequest(req restModel.PurchaseRequest) (ledgerService.PurchaseInput, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return ledgerService.PurchaseInput{}, err
	}

	methods := make([]model.PaymentMethod, 0, len(req.PaymentMethods))
	for _, m := range req.PaymentMethods {
		methods = append(methods, model.PaymentMethod(m))
	}

	sel := discount.Selection{
		PaymentMethods:     methods,
		OtherPaymentMethod: req.OtherPaymentMethod,
		ExpeditedPayment:   req.ExpeditedPayment,
		Membership:         req.Membership,
	}
	if req.OtherDiscount != nil {
		sel.OtherEnabled = true
		sel.OtherName = req.OtherDiscount.Name
		sel.OtherRate = string(req.OtherDiscount.Rate)
		sel.OtherIsFee = req.OtherDiscount.IsFee
	}

	return ledgerService.PurchaseInput{
		Date:         date,
		Quantity:     string(req.Amount),
		PricePerUnit: string(req.PricePerUnit),
		Unit:         req.Unit,
		Currency:     req.Currency,
		Source:       req.Source,
		OrderNumber:  req.OrderNumber,
		Notes:        req.Notes,
		ProductID:    req.ProductID,
		ProductName:  req.ProductName,
		Discounts:    sel,
	}, nil
}

func ConvertPurchasePreview(pv ledgerService.PurchasePreview) restModel.PurchasePreviewResponse {
	lines := make([]restModel.Adjustment, 0, len(pv.Lines))
	for _, l := range pv.Lines {
		lines = append(lines, restModel.Adjustment{Label: l.Label, Rate: l.Rate, Amount: l.Amount})
	}
	return restModel.PurchasePreviewResponse{
		Amount:                pv.Quantity,
		PricePerUnit:          pv.PricePerUnit,
		TotalPrice:            pv.TotalPrice,
		EffectiveTotalPrice:   pv.EffectiveTotalPrice,
		EffectivePricePerUnit: pv.EffectivePricePerUnit,
		Adjustments:           lines,
		GeneratedNotes:        pv.Breakdown,
	}
}

func ConvertSaleRequest(req restModel.SaleRequest) (ledgerService.SaleInput, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return ledgerService.SaleInput{}, err
	}

	fees := ledgerService.FeeInput{
		Shipping:           string(req.Fees.Shipping),
		MarketplaceFee:     string(req.Fees.SellerFee),
		UseMarketplaceRate: req.Fees.UseMarketplaceRate,
		PaymentProcessing:  string(req.Fees.PaymentProcessing),
	}
	if req.Fees.Other != nil {
		fees.OtherEnabled = true
		fees.OtherName = req.Fees.Other.Name
		fees.Other = string(req.Fees.Other.Amount)
	}

	allocs := make([]ledgerService.AllocationInput, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocs = append(allocs, ledgerService.AllocationInput{LotID: a.PurchaseID, Quantity: string(a.Amount)})
	}

	return ledgerService.SaleInput{
		Date:         date,
		PricePerUnit: string(req.PricePerUnit),
		Unit:         req.Unit,
		Currency:     req.Currency,
		Buyer:        req.Buyer,
		OrderNumber:  req.OrderNumber,
		Notes:        req.Notes,
		Fees:         fees,
		Allocations:  allocs,
	}, nil
}

func ConvertSalePreview(pv ledgerService.SalePreview) restModel.SalePreviewResponse {
	// the store shape already carries allocations and fee details as the UI expects them
	stored := storeConverter.ConvertSaleToStore(model.SaleRecord{
		Fees:        pv.Fees,
		Allocations: pv.Allocations,
	})

	return restModel.SalePreviewResponse{
		Amount:                 pv.Quantity,
		TotalPrice:             pv.TotalPrice,
		OriginalPurchasePrice:  pv.OriginalPurchasePrice,
		EffectivePurchasePrice: pv.TotalCostBasis,
		Fees:                   pv.TotalFees,
		FeeDetails:             *stored.FeeDetails,
		Profit:                 pv.Profit,
		ProfitPercentage:       pv.ProfitPercentage,
		PurchaseAllocations:    stored.PurchaseAllocations,
		GeneratedNotes:         pv.Breakdown,
	}
}

func ConvertPurchases(lots []model.PurchaseLot) []storeModel.Purchase {
	res := make([]storeModel.Purchase, 0, len(lots))
	for _, lot := range lots {
		res = append(res, storeConverter.ConvertPurchaseToStore(lot))
	}
	return res
}

func ConvertSales(sales []model.SaleRecord) []storeModel.Sale {
	res := make([]storeModel.Sale, 0, len(sales))
	for _, sale := range sales {
		res = append(res, storeConverter.ConvertSaleToStore(sale))
	}
	return res
}

func ConvertAvailableLots(lots []model.LotAvailability) []restModel.AvailableLot {
	res := make([]restModel.AvailableLot, 0, len(lots))
	for _, l := range lots {
		res = append(res, restModel.AvailableLot{
			Purchase:  storeConverter.ConvertPurchaseToStore(l.Lot),
			Sold:      l.Sold,
			Available: l.Available,
		})
	}
	return res
}

func ConvertSummary(s model.PortfolioSummary) restModel.Summary {
	res := restModel.Summary{
		CurrentHoldings:  s.CurrentHoldings,
		Unit:             string(s.Unit),
		Currency:         string(s.Currency),
		TotalInvestment:  s.TotalInvestment,
		TotalProfit:      s.TotalProfit,
		ProfitPercentage: s.ProfitPercentage.Round(2),
		EstimatedValue:   s.EstimatedValue,
		PurchasesCount:   s.PurchasesCount,
		SalesCount:       s.SalesCount,
	}
	if s.SpotPrice != nil {
		res.SpotPrice = &restModel.SpotPrice{
			Metal:    s.SpotPrice.Metal,
			Bid:      s.SpotPrice.Bid,
			Ask:      s.SpotPrice.Ask,
			Currency: string(s.SpotPrice.Currency),
			AsOf:     s.SpotPrice.AsOf.Format(time.RFC3339),
		}
	}
	return res
}

func ConvertTransactions(txs []model.Transaction) []restModel.Transaction {
	res := make([]restModel.Transaction, 0, len(txs))
	for _, tx := range txs {
		methods := make([]string, 0, len(tx.PaymentMethods))
		for _, m := range tx.PaymentMethods {
			methods = append(methods, string(m))
		}

		allocs := make([]restModel.TransactionAllocation, 0, len(tx.Allocations))
		for _, a := range tx.Allocations {
			allocs = append(allocs, restModel.TransactionAllocation{
				PurchaseID:   a.LotID,
				PurchaseDate: a.LotDate.Format(dateLayout),
				Amount:       a.Quantity,
				CostBasis:    a.CostBasis,
				ProductName:  a.ProductName,
			})
		}

		res = append(res, restModel.Transaction{
			ID:             tx.ID,
			Date:           tx.Date.Format(dateLayout),
			Type:           string(tx.Type),
			Amount:         tx.Quantity,
			Unit:           string(tx.Unit),
			Price:          tx.Price,
			Total:          tx.Total,
			Currency:       string(tx.Currency),
			ProductName:    tx.ProductName,
			Source:         tx.Source,
			PaymentMethods: methods,
			Notes:          tx.Notes,
			Profit:         tx.Profit,
			Allocations:    allocs,
		})
	}
	return res
}

func ConvertProducts(catalog model.ProductCatalog) restModel.Products {
	res := restModel.Products{Products: make([]restModel.Product, 0, len(catalog.Products))}
	for _, p := range catalog.Products {
		res.Products = append(res.Products, restModel.Product{ID: p.ID, Name: p.Name})
	}
	if !catalog.FetchedAt.IsZero() {
		res.FetchedAt = catalog.FetchedAt.Format(time.RFC3339)
	}
	return res
}
