package ledgerService

import (
	"context"
	"log/slog"
	"slices"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/profit"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/shopspring/decimal"
)

// PortfolioSummary aggregates the ledger. The spot price is optional: when
// it can't be fetched the summary is returned without an estimated value.
func (s *LedgerService) PortfolioSummary(ctx context.Context) (model.PortfolioSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.PortfolioSummary"

	slog.Debug("PortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op))

	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := summarize(lots, sales)

	if s.spot != nil {
		price, err := s.spot.GetSpotPrice(ctx)
		if err != nil {
			slog.Warn("spot price unavailable, summary without estimate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			summary.SpotPrice = &price
			summary.EstimatedValue = summary.CurrentHoldings.Mul(price.Bid)
		}
	}

	slog.Debug("PortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op))
	return summary, nil
}

func summarize(lots []model.PurchaseLot, sales []model.SaleRecord) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		Unit:           model.UnitOz,
		Currency:       model.CurrencyUSD,
		PurchasesCount: len(lots),
		SalesCount:     len(sales),
	}

	purchased := decimal.Zero
	for _, lot := range lots {
		purchased = purchased.Add(lot.Quantity)
		summary.TotalInvestment = summary.TotalInvestment.Add(lot.Investment())
	}
	if len(lots) > 0 {
		summary.Unit = lots[0].Unit
		summary.Currency = lots[0].Currency
	}

	sold := decimal.Zero
	for _, sale := range sales {
		sold = sold.Add(sale.Quantity)
		summary.TotalProfit = summary.TotalProfit.Add(sale.Profit)
	}

	summary.CurrentHoldings = purchased.Sub(sold)
	summary.ProfitPercentage = profit.ROI(summary.TotalProfit, summary.TotalInvestment)
	return summary
}

// RecentTransactions merges purchases and sales, newest first. A non-positive
// limit falls back to the configured default.
func (s *LedgerService) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = s.cfg.RecentTransactionsLimit
	}

	lots, err := s.repo.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return nil, err
	}

	txs := mergeTransactions(lots, sales)
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func mergeTransactions(lots []model.PurchaseLot, sales []model.SaleRecord) []model.Transaction {
	products := make(map[string]string, len(lots))
	for _, lot := range lots {
		products[lot.ID] = lot.ProductName
	}

	txs := make([]model.Transaction, 0, len(lots)+len(sales))
	for _, lot := range lots {
		txs = append(txs, model.Transaction{
			ID:             lot.ID,
			Date:           lot.Date,
			Type:           model.TransactionPurchase,
			Quantity:       lot.Quantity,
			Unit:           lot.Unit,
			Price:          lot.CostBasisPerUnit(),
			Total:          lot.Investment(),
			Currency:       lot.Currency,
			ProductName:    lot.ProductName,
			Source:         lot.Source,
			PaymentMethods: lot.PaymentMethods,
			Notes:          lot.DisplayNotes(),
		})
	}

	for _, sale := range sales {
		p := sale.Profit
		views := make([]model.AllocationView, 0, len(sale.Allocations))
		for _, alloc := range sale.Allocations {
			views = append(views, model.AllocationView{LotAllocation: alloc, ProductName: products[alloc.LotID]})
		}
		txs = append(txs, model.Transaction{
			ID:          sale.ID,
			Date:        sale.Date,
			Type:        model.TransactionSale,
			Quantity:    sale.Quantity,
			Unit:        sale.Unit,
			Price:       sale.PricePerUnit,
			Total:       sale.TotalPrice,
			Currency:    sale.Currency,
			Source:      sale.Buyer,
			Notes:       sale.DisplayNotes(),
			Profit:      &p,
			Allocations: views,
		})
	}

	slices.SortStableFunc(txs, func(a, b model.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return txs
}
