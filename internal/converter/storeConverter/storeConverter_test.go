package storeConverter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func samplePurchase() model.PurchaseLot {
	return model.PurchaseLot{
		ID:                    "3c1c1a4e-6c5b-4f7e-9d61-6f0b7b1b8a10",
		Date:                  time.Date(2025, time.March, 3, 15, 4, 5, 123456789, time.UTC),
		Quantity:              d("10"),
		Unit:                  model.UnitOz,
		PricePerUnit:          d("2000"),
		EffectivePricePerUnit: d("19600").Div(d("10")),
		Currency:              model.CurrencyUSD,
		TotalPrice:            d("20000"),
		EffectiveTotalPrice:   d("19600"),
		DiscountsApplied:      true,
		Notes:                 "bars from warehouse 12",
		Breakdown:             "Applied discounts: Executive membership: 2% (-$400.00). Original price: $20,000.00",
		Source:                "Costco",
		OrderNumber:           "A-1001",
		PaymentMethods:        []model.PaymentMethod{model.PaymentCitiAA, model.PaymentOther},
		OtherPaymentMethod:    "Gift card",
		ProductID:             "p-1",
		ProductName:           "1 oz Gold Bar PAMP Suisse",
		CreatedAt:             time.Date(2025, time.March, 3, 15, 5, 0, 0, time.UTC),
	}
}

func sampleSale() model.SaleRecord {
	return model.SaleRecord{
		ID:           "sale-1",
		Date:         time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		Quantity:     d("4.5"),
		Unit:         model.UnitOz,
		PricePerUnit: d("2100"),
		Currency:     model.CurrencyUSD,
		Buyer:        "Pure",
		OrderNumber:  "S-77",
		Notes:        "first sale",
		Breakdown:    "Profit Details:\nNet Profit: $1.00 (0.01% ROI)",
		TotalPrice:   d("9450"),
		Fees: model.SaleFees{
			Shipping:          d("25"),
			Marketplace:       d("70.88"),
			PaymentProcessing: d("0"),
			OtherName:         "Insurance",
			Other:             d("4"),
		},
		OriginalPurchasePrice: d("9000"),
		TotalCostBasis:        d("8820"),
		TotalFees:             d("99.88"),
		Profit:                d("530.12"),
		ProfitPercentage:      d("530.12").Div(d("8820")).Mul(d("100")),
		Allocations: []model.LotAllocation{
			{LotID: "lot-1", LotDate: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), Quantity: d("4"), CostBasisPerUnit: d("1960"), CostBasis: d("7840")},
			{LotID: "lot-2", LotDate: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), Quantity: d("0.5"), CostBasisPerUnit: d("1960"), CostBasis: d("980")},
		},
		CreatedAt: time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, time.April, 2, 11, 30, 0, 0, time.UTC),
	}
}

func TestPurchaseRoundTrip(t *testing.T) {
	orig := samplePurchase()

	raw, err := json.Marshal(ConvertPurchaseToStore(orig))
	require.NoError(t, err)

	var stored storeModel.Purchase
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "2025-03-03T15:04:05.123456789Z", stored.Date)

	got, err := ConvertPurchase(stored)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, got.ID)
	assert.True(t, orig.Date.Equal(got.Date))
	assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, orig.Quantity.Equal(got.Quantity))
	assert.True(t, orig.PricePerUnit.Equal(got.PricePerUnit))
	assert.True(t, orig.EffectivePricePerUnit.Equal(got.EffectivePricePerUnit))
	assert.True(t, orig.TotalPrice.Equal(got.TotalPrice))
	assert.True(t, orig.EffectiveTotalPrice.Equal(got.EffectiveTotalPrice))
	assert.Equal(t, orig.Unit, got.Unit)
	assert.Equal(t, orig.Currency, got.Currency)
	assert.Equal(t, orig.DiscountsApplied, got.DiscountsApplied)
	assert.Equal(t, orig.Notes, got.Notes)
	assert.Equal(t, orig.Breakdown, got.Breakdown)
	assert.Equal(t, orig.Source, got.Source)
	assert.Equal(t, orig.OrderNumber, got.OrderNumber)
	assert.Equal(t, orig.PaymentMethods, got.PaymentMethods)
	assert.Equal(t, orig.OtherPaymentMethod, got.OtherPaymentMethod)
	assert.Equal(t, orig.ProductID, got.ProductID)
	assert.Equal(t, orig.ProductName, got.ProductName)

	again, err := json.Marshal(ConvertPurchaseToStore(got))
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestSaleRoundTrip(t *testing.T) {
	orig := sampleSale()

	raw, err := json.Marshal(ConvertSaleToStore(orig))
	require.NoError(t, err)

	var stored storeModel.Sale
	require.NoError(t, json.Unmarshal(raw, &stored))

	got, err := ConvertSale(stored)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, got.ID)
	assert.True(t, orig.Date.Equal(got.Date))
	assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, orig.UpdatedAt.Equal(got.UpdatedAt))
	assert.True(t, orig.Quantity.Equal(got.Quantity))
	assert.True(t, orig.PricePerUnit.Equal(got.PricePerUnit))
	assert.True(t, orig.TotalPrice.Equal(got.TotalPrice))
	assert.True(t, orig.OriginalPurchasePrice.Equal(got.OriginalPurchasePrice))
	assert.True(t, orig.TotalCostBasis.Equal(got.TotalCostBasis))
	assert.True(t, orig.TotalFees.Equal(got.TotalFees))
	assert.True(t, orig.Profit.Equal(got.Profit))
	assert.True(t, orig.ProfitPercentage.Equal(got.ProfitPercentage))
	assert.True(t, orig.Fees.Marketplace.Equal(got.Fees.Marketplace))
	assert.True(t, orig.Fees.Other.Equal(got.Fees.Other))
	assert.Equal(t, orig.Fees.OtherName, got.Fees.OtherName)
	assert.Equal(t, orig.Buyer, got.Buyer)
	assert.Equal(t, orig.Notes, got.Notes)
	assert.Equal(t, orig.Breakdown, got.Breakdown)

	require.Len(t, got.Allocations, len(orig.Allocations))
	for i := range orig.Allocations {
		want, have := orig.Allocations[i], got.Allocations[i]
		assert.Equal(t, want.LotID, have.LotID)
		assert.True(t, want.LotDate.Equal(have.LotDate))
		assert.True(t, want.Quantity.Equal(have.Quantity))
		assert.True(t, want.CostBasisPerUnit.Equal(have.CostBasisPerUnit))
		assert.True(t, want.CostBasis.Equal(have.CostBasis))
	}

	again, err := json.Marshal(ConvertSaleToStore(got))
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestConvertSale_LegacySinglePurchase(t *testing.T) {
	raw := `{
		"id": "old-1",
		"date": "2024-11-05",
		"amount": "2",
		"unit": "oz",
		"pricePerUnit": "2500",
		"currency": "USD",
		"orderNumber": "",
		"totalPrice": "5000",
		"originalPurchasePrice": "4000",
		"effectivePurchasePrice": "3900",
		"fees": "0",
		"profit": "1100",
		"profitPercentage": "28.2",
		"purchaseId": "lot-9",
		"purchaseDate": "2024-10-01T00:00:00.000Z"
	}`

	var stored storeModel.Sale
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))

	got, err := ConvertSale(stored)
	require.NoError(t, err)

	assert.True(t, got.Date.Equal(time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC)))
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "lot-9", got.Allocations[0].LotID)
	assert.True(t, got.Allocations[0].Quantity.Equal(d("2")))
	assert.True(t, got.Allocations[0].CostBasis.Equal(d("3900")))
	assert.True(t, got.Allocations[0].CostBasisPerUnit.Equal(d("1950")))
}

func TestConvertPurchase_EffectivePricing(t *testing.T) {
	t.Run("recorded zero is kept", func(t *testing.T) {
		lot := samplePurchase()
		lot.EffectivePricePerUnit = decimal.Zero
		lot.EffectiveTotalPrice = decimal.Zero

		raw, err := json.Marshal(ConvertPurchaseToStore(lot))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"effectivePricePerUnit":"0"`)

		var stored storeModel.Purchase
		require.NoError(t, json.Unmarshal(raw, &stored))
		got, err := ConvertPurchase(stored)
		require.NoError(t, err)
		assert.True(t, got.EffectivePricePerUnit.IsZero())
		assert.True(t, got.EffectiveTotalPrice.IsZero())
	})

	t.Run("absent falls back to nominal", func(t *testing.T) {
		raw := `{"id":"old","date":"2024-06-01","amount":"2","unit":"oz","pricePerUnit":"1900","currency":"USD","totalPrice":"3800"}`

		var stored storeModel.Purchase
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		got, err := ConvertPurchase(stored)
		require.NoError(t, err)
		assert.True(t, got.EffectivePricePerUnit.Equal(d("1900")))
		assert.True(t, got.EffectiveTotalPrice.Equal(d("3800")))
	})
}

func TestConvertPurchase_BadDate(t *testing.T) {
	_, err := ConvertPurchase(storeModel.Purchase{ID: "x", Date: "yesterday"})
	assert.Error(t, err)
}
