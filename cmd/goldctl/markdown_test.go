package main

import (
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummaryMarkdown(t *testing.T) {
	s := model.PortfolioSummary{
		CurrentHoldings:  decimal.RequireFromString("3.5"),
		Unit:             model.UnitOz,
		Currency:         model.CurrencyUSD,
		TotalInvestment:  decimal.RequireFromString("7000"),
		TotalProfit:      decimal.RequireFromString("200"),
		ProfitPercentage: decimal.RequireFromString("2.857142"),
		PurchasesCount:   2,
		SalesCount:       1,
	}

	md := summaryMarkdown(s)
	assert.Contains(t, md, "| Current holdings | 3.5 oz |")
	assert.Contains(t, md, "| Total investment | $7,000.00 |")
	assert.Contains(t, md, "| Total profit | +$200.00 |")
	assert.Contains(t, md, "| Profit % | 2.86% |")
	assert.Contains(t, md, "| Purchases / Sales | 2 / 1 |")
	assert.Contains(t, md, "_Spot price unavailable_")
	assert.NotContains(t, md, "Estimated value")

	s.SpotPrice = &model.SpotPrice{
		Bid:      decimal.RequireFromString("2000"),
		Currency: model.CurrencyUSD,
		AsOf:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	s.EstimatedValue = decimal.RequireFromString("7000")

	md = summaryMarkdown(s)
	assert.Contains(t, md, "| Spot bid | $2,000.00 |")
	assert.Contains(t, md, "| Estimated value | $7,000.00 |")
	assert.Contains(t, md, "2024-05-01T12:00:00Z")
}

func TestLotsMarkdown(t *testing.T) {
	assert.Contains(t, lotsMarkdown(nil), "Nothing left to sell")

	md := lotsMarkdown([]model.LotAvailability{{
		Lot: model.PurchaseLot{
			Date:                  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			ProductName:           "1 oz | Eagle",
			Quantity:              decimal.RequireFromString("2"),
			Unit:                  model.UnitOz,
			PricePerUnit:          decimal.RequireFromString("2000"),
			EffectivePricePerUnit: decimal.RequireFromString("1960"),
			Currency:              model.CurrencyUSD,
		},
		Sold:      decimal.RequireFromString("0.5"),
		Available: decimal.RequireFromString("1.5"),
	}})
	assert.Contains(t, md, `| 2024-01-15 | 1 oz \| Eagle | 2 | 0.5 | 1.5 oz | $1,960.00 |`)
}

func TestTransactionsMarkdown(t *testing.T) {
	assert.Contains(t, transactionsMarkdown(nil), "No transactions yet")

	profit := decimal.RequireFromString("-15.5")
	md := transactionsMarkdown([]model.Transaction{
		{
			Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Type:     model.TransactionSale,
			Quantity: decimal.RequireFromString("1"),
			Unit:     model.UnitOz,
			Price:    decimal.RequireFromString("2100"),
			Total:    decimal.RequireFromString("2100"),
			Currency: model.CurrencyUSD,
			Source:   "Local dealer",
			Profit:   &profit,
		},
		{
			Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Type:     model.TransactionPurchase,
			Quantity: decimal.RequireFromString("2"),
			Unit:     model.UnitOz,
			Price:    decimal.RequireFromString("1960"),
			Total:    decimal.RequireFromString("3920"),
			Currency: model.CurrencyUSD,
			Source:   "Pure",
		},
	})
	assert.Contains(t, md, "| 2024-03-01 | sale | 1 oz | $2,100.00 | $2,100.00 | -$15.50 | Local dealer |")
	assert.Contains(t, md, "| 2024-01-15 | purchase | 2 oz | $1,960.00 | $3,920.00 |  | Pure |")
}
