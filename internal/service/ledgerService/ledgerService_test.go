package ledgerService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/data/repository/memory"
	"github.com/KotFed0t/gold_tracker/internal/discount"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var feeDefaults = model.FeeSettings{
	SurchargeRate:        d("0.01"),
	MembershipRebateRate: d("0.02"),
	MarketplaceFeeRate:   d("0.0075"),
}

type fakeSpot struct {
	price model.SpotPrice
	err   error
}

func (f *fakeSpot) GetSpotPrice(context.Context) (model.SpotPrice, error) {
	return f.price, f.err
}

type fakeReportGen struct {
	got model.LedgerReport
}

func (f *fakeReportGen) Generate(_ context.Context, report model.LedgerReport) ([]byte, string, error) {
	f.got = report
	return []byte("xlsx"), ".xlsx", nil
}

type fakeCloud struct {
	filename string
	body     string
}

func (f *fakeCloud) UploadFile(_ context.Context, reader io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.filename, f.body = filename, string(b)
	return "https://example.test/" + filename, nil
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, spot SpotPriceProvider, cloud CloudStorage) (*LedgerService, *fakeReportGen) {
	t.Helper()

	gen := &fakeReportGen{}
	repo := repository.NewLedger(memory.New(), feeDefaults)
	svc := New(&config.Config{RecentTransactionsLimit: 10}, repo, spot, gen, cloud)

	var seq int
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc, gen
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// tenOzLot records 10 oz at $2,000 with the 2% membership rebate, $1,960 effective.
func tenOzLot(t *testing.T, svc *LedgerService) model.PurchaseLot {
	t.Helper()
	lot, err := svc.CreatePurchase(context.Background(), PurchaseInput{
		Date:         day("2025-01-10"),
		Quantity:     "10",
		PricePerUnit: "2000",
		Unit:         "oz",
		Currency:     "USD",
		ProductName:  "1 oz Gold Buffalo",
		Discounts:    discount.Selection{Membership: true},
	})
	require.NoError(t, err)
	return lot
}

func sellFrom(lotID, qty string) SaleInput {
	return SaleInput{
		Date:         day("2025-02-01"),
		PricePerUnit: "2100",
		Allocations:  []AllocationInput{{LotID: lotID, Quantity: qty}},
	}
}

func TestCreatePurchase_SnapshotsEffectivePrice(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	lot := tenOzLot(t, svc)

	assert.Equal(t, "id-1", lot.ID)
	assert.True(t, lot.TotalPrice.Equal(d("20000")))
	assert.True(t, lot.EffectiveTotalPrice.Equal(d("19600")))
	assert.True(t, lot.EffectivePricePerUnit.Equal(d("1960")))
	assert.True(t, lot.DiscountsApplied)
	assert.Contains(t, lot.Breakdown, "Executive membership: 2% (-$400.00)")
	assert.Equal(t, fixedNow, lot.CreatedAt)

	lots, err := svc.ListPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lot.ID, lots[0].ID)
}

func TestCreatePurchase_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	cases := map[string]PurchaseInput{
		"zero quantity":  {Quantity: "0", PricePerUnit: "1"},
		"bad price":      {Quantity: "1", PricePerUnit: "abc"},
		"negative price": {Quantity: "1", PricePerUnit: "-5"},
		"bad unit":       {Quantity: "1", PricePerUnit: "1", Unit: "lb"},
		"bad currency":   {Quantity: "1", PricePerUnit: "1", Currency: "XYZ"},
		"unknown method": {Quantity: "1", PricePerUnit: "1", Discounts: discount.Selection{PaymentMethods: []model.PaymentMethod{"cash"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreatePurchase(ctx, in)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	lots, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestCreatePurchase_RejectsNegativeEffectivePrice(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	in := PurchaseInput{
		Quantity:     "1",
		PricePerUnit: "100",
		Discounts:    discount.Selection{OtherEnabled: true, OtherRate: "150"},
	}

	pv, err := svc.PreviewPurchase(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, pv.EffectiveTotalPrice.Equal(d("-50")))

	_, err = svc.CreatePurchase(context.Background(), in)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateSale_ProfitFromEffectiveCost(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	lot := tenOzLot(t, svc)

	sale, err := svc.CreateSale(context.Background(), sellFrom(lot.ID, "4"))
	require.NoError(t, err)

	assert.True(t, sale.Quantity.Equal(d("4")))
	assert.True(t, sale.TotalPrice.Equal(d("8400")))
	assert.True(t, sale.TotalCostBasis.Equal(d("7840")))
	assert.True(t, sale.OriginalPurchasePrice.Equal(d("8000")))
	assert.True(t, sale.Profit.Equal(d("560")))
	assert.Equal(t, "7.14", sale.ProfitPercentage.StringFixed(2))
	require.Len(t, sale.Allocations, 1)
	assert.Equal(t, lot.ID, sale.Allocations[0].LotID)
	assert.True(t, sale.Allocations[0].CostBasisPerUnit.Equal(d("1960")))
	assert.Contains(t, sale.Breakdown, "Net Profit: $560.00 (7.14% ROI)")

	lots, err := svc.AvailableLots(context.Background())
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Available.Equal(d("6")))
}

func TestCreateSale_ExceedsAvailable(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	lot := tenOzLot(t, svc)

	_, err := svc.CreateSale(context.Background(), sellFrom(lot.ID, "11"))
	require.ErrorIs(t, err, service.ErrAllocation)

	var allocErr *service.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.True(t, allocErr.Available.Equal(d("10")))
	assert.Equal(t, "you can only sell up to 10 oz from purchase dated 2025-01-10", allocErr.Error())

	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCreateSale_ExhaustedLot(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	_, err := svc.CreateSale(ctx, sellFrom(lot.ID, "5"))
	require.NoError(t, err)
	_, err = svc.CreateSale(ctx, sellFrom(lot.ID, "5"))
	require.NoError(t, err)

	lots, err := svc.AvailableLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, lots)

	_, err = svc.CreateSale(ctx, sellFrom(lot.ID, "0.1"))
	var allocErr *service.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.True(t, allocErr.Available.IsZero())
}

func TestCreateSale_InvalidAllocations(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	cases := map[string]SaleInput{
		"no allocations": {PricePerUnit: "2100"},
		"zero quantity":  sellFrom(lot.ID, "0"),
		"missing lot":    sellFrom("nope", "1"),
		"duplicate lot": {
			PricePerUnit: "2100",
			Allocations:  []AllocationInput{{LotID: lot.ID, Quantity: "1"}, {LotID: lot.ID, Quantity: "1"}},
		},
		"bad fee": {
			PricePerUnit: "2100",
			Fees:         FeeInput{Shipping: "ten"},
			Allocations:  []AllocationInput{{LotID: lot.ID, Quantity: "1"}},
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateSale(ctx, in)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestUpdateSale_OwnAllocationsDoNotCount(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	sale, err := svc.CreateSale(ctx, sellFrom(lot.ID, "8"))
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	updated, err := svc.UpdateSale(ctx, sale.ID, sellFrom(lot.ID, "10"))
	require.NoError(t, err)

	assert.Equal(t, sale.ID, updated.ID)
	assert.Equal(t, sale.CreatedAt, updated.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), updated.UpdatedAt)
	assert.True(t, updated.Quantity.Equal(d("10")))

	sales, err := svc.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Quantity.Equal(d("10")))

	_, err = svc.UpdateSale(ctx, sale.ID, sellFrom(lot.ID, "10.5"))
	assert.ErrorIs(t, err, service.ErrAllocation)

	_, err = svc.UpdateSale(ctx, "missing", sellFrom(lot.ID, "1"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateSale_UnknownSale(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	_, err := svc.CreateSale(ctx, sellFrom(lot.ID, "10"))
	require.NoError(t, err)

	_, err = svc.UpdateSale(ctx, "missing", sellFrom(lot.ID, "1"))
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.NotErrorIs(t, err, service.ErrAllocation)
}

func TestFullyDiscountedLot(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	lot, err := svc.CreatePurchase(ctx, PurchaseInput{
		Date:         day("2025-01-10"),
		Quantity:     "10",
		PricePerUnit: "2000",
		Discounts:    discount.Selection{OtherEnabled: true, OtherName: "Prize", OtherRate: "100"},
	})
	require.NoError(t, err)
	assert.True(t, lot.EffectiveTotalPrice.IsZero())
	assert.True(t, lot.EffectivePricePerUnit.IsZero())

	sale, err := svc.CreateSale(ctx, sellFrom(lot.ID, "4"))
	require.NoError(t, err)
	assert.True(t, sale.TotalCostBasis.IsZero(), sale.TotalCostBasis.String())
	assert.True(t, sale.Profit.Equal(d("8400")), sale.Profit.String())
	assert.True(t, sale.ProfitPercentage.IsZero())
	assert.True(t, sale.OriginalPurchasePrice.Equal(d("8000")))

	summary, err := svc.PortfolioSummary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TotalInvestment.IsZero(), summary.TotalInvestment.String())
	assert.True(t, summary.TotalProfit.Equal(d("8400")))
}

func TestDeleteSale_FreesQuantity(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	sale, err := svc.CreateSale(ctx, sellFrom(lot.ID, "10"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, sale.ID))
	assert.ErrorIs(t, svc.DeleteSale(ctx, sale.ID), service.ErrNotFound)

	lots, err := svc.AvailableLots(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Available.Equal(d("10")))
}

func TestDeletePurchase(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	sale, err := svc.CreateSale(ctx, sellFrom(lot.ID, "1"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePurchase(ctx, lot.ID), service.ErrLotInUse)
	assert.ErrorIs(t, svc.DeletePurchase(ctx, "missing"), service.ErrNotFound)

	require.NoError(t, svc.DeleteSale(ctx, sale.ID))
	require.NoError(t, svc.DeletePurchase(ctx, lot.ID))

	lots, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestPreviewSale_IsLenient(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	lot := tenOzLot(t, svc)

	in := sellFrom(lot.ID, "20")
	in.Allocations = append(in.Allocations, AllocationInput{LotID: "gone", Quantity: "1"})
	in.Fees = FeeInput{UseMarketplaceRate: true}

	pv, err := svc.PreviewSale(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, pv.Quantity.Equal(d("21")))
	assert.True(t, pv.TotalCostBasis.Equal(d("39200")))
	assert.True(t, pv.OriginalPurchasePrice.Equal(d("40000")))
	// 21 * 2100 * 0.0075
	assert.True(t, pv.Fees.Marketplace.Equal(d("330.75")))

	sales, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestSaveFeeSettings(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	fs, err := svc.GetFeeSettings(ctx)
	require.NoError(t, err)
	assert.True(t, fs.MembershipRebateRate.Equal(d("0.02")))

	err = svc.SaveFeeSettings(ctx, model.FeeSettings{SurchargeRate: d("1.5")})
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, svc.SaveFeeSettings(ctx, model.FeeSettings{MembershipRebateRate: d("0.03")}))

	lot, err := svc.CreatePurchase(ctx, PurchaseInput{
		Quantity:     "1",
		PricePerUnit: "1000",
		Discounts:    discount.Selection{Membership: true},
	})
	require.NoError(t, err)
	assert.True(t, lot.EffectiveTotalPrice.Equal(d("970")))
}

func TestPortfolioSummary(t *testing.T) {
	spot := &fakeSpot{price: model.SpotPrice{Metal: "Gold", Bid: d("2050"), Ask: d("2070"), Currency: model.CurrencyUSD}}
	svc, _ := newTestService(t, spot, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	_, err := svc.CreateSale(ctx, sellFrom(lot.ID, "4"))
	require.NoError(t, err)

	summary, err := svc.PortfolioSummary(ctx)
	require.NoError(t, err)

	assert.True(t, summary.CurrentHoldings.Equal(d("6")))
	assert.True(t, summary.TotalInvestment.Equal(d("19600")))
	assert.True(t, summary.TotalProfit.Equal(d("560")))
	assert.Equal(t, "2.86", summary.ProfitPercentage.StringFixed(2))
	require.NotNil(t, summary.SpotPrice)
	assert.True(t, summary.EstimatedValue.Equal(d("12300")))
	assert.Equal(t, 1, summary.PurchasesCount)
	assert.Equal(t, 1, summary.SalesCount)
}

func TestPortfolioSummary_SpotPriceUnavailable(t *testing.T) {
	svc, _ := newTestService(t, &fakeSpot{err: errors.New("boom")}, nil)
	tenOzLot(t, svc)

	summary, err := svc.PortfolioSummary(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summary.SpotPrice)
	assert.True(t, summary.EstimatedValue.IsZero())
	assert.True(t, summary.CurrentHoldings.Equal(d("10")))
}

func TestRecentTransactions(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	lot := tenOzLot(t, svc)

	_, err := svc.CreateSale(ctx, sellFrom(lot.ID, "4"))
	require.NoError(t, err)

	txs, err := svc.RecentTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, model.TransactionSale, txs[0].Type)
	require.NotNil(t, txs[0].Profit)
	assert.True(t, txs[0].Profit.Equal(d("560")))
	require.Len(t, txs[0].Allocations, 1)
	assert.Equal(t, "1 oz Gold Buffalo", txs[0].Allocations[0].ProductName)

	assert.Equal(t, model.TransactionPurchase, txs[1].Type)
	assert.True(t, txs[1].Total.Equal(d("19600")))

	txs, err = svc.RecentTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestExportAndUploadReport(t *testing.T) {
	cloud := &fakeCloud{}
	svc, gen := newTestService(t, nil, cloud)
	ctx := context.Background()
	tenOzLot(t, svc)

	body, filename, err := svc.ExportReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gold-ledger-2025-03-01.xlsx", filename)
	assert.Equal(t, "xlsx", string(body))
	assert.Len(t, gen.got.Purchases, 1)
	assert.True(t, gen.got.Summary.CurrentHoldings.Equal(d("10")))

	link, err := svc.UploadReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/gold-ledger-2025-03-01.xlsx", link)
	assert.Equal(t, "xlsx", cloud.body)
}

func TestUploadReport_Disabled(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.UploadReport(context.Background())
	assert.ErrorIs(t, err, service.ErrUploadDisabled)
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestService(t, nil, nil)
	lot := tenOzLot(t, source)
	_, err := source.CreateSale(ctx, sellFrom(lot.ID, "4"))
	require.NoError(t, err)

	payload, err := source.Backup(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"createdAt": "2025-03-01T12:00:00Z"`)

	target, _ := newTestService(t, nil, nil)
	tenOzLot(t, target)
	require.NoError(t, target.Restore(ctx, payload))

	lots, err := target.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lot.ID, lots[0].ID)

	available, err := target.AvailableLots(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.True(t, available[0].Available.Equal(d("6")))
}

func TestRestore_RejectsInvalidBackup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, nil)
	lot := tenOzLot(t, svc)

	for _, payload := range []string{
		`not json`,
		`{"createdAt":"2025-03-01T12:00:00Z"}`,
		`{"collections":{"purchases":[{"id":"x","date":"tomorrow"}]}}`,
	} {
		err := svc.Restore(ctx, []byte(payload))
		var vErr *service.ValidationError
		require.ErrorAs(t, err, &vErr, payload)
		assert.Equal(t, "backup", vErr.Field)
	}

	lots, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lot.ID, lots[0].ID)
}
