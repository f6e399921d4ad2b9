// Package profit computes the totals, fees and return of a sale from its
// resolved allocations and renders the profit note stored with the record.
package profit

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/shopspring/decimal"
)

const defaultOtherFee = "Other Fee"

var hundred = decimal.NewFromInt(100)

// FeeInput is the fee part of a sale form. Amounts are flat, in the sale currency.
type FeeInput struct {
	Shipping decimal.Decimal
	// MarketplaceFee is ignored when UseMarketplaceRate is set.
	MarketplaceFee     decimal.Decimal
	UseMarketplaceRate bool
	PaymentProcessing  decimal.Decimal
	OtherEnabled       bool
	OtherName          string
	Other              decimal.Decimal
}

type Input struct {
	Allocations  []model.LotAllocation
	PricePerUnit decimal.Decimal
	Unit         model.Unit
	Currency     model.Currency
	Fees         FeeInput
}

type Result struct {
	Quantity         decimal.Decimal
	TotalPrice       decimal.Decimal
	TotalCostBasis   decimal.Decimal
	Fees             model.SaleFees
	TotalFees        decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercentage decimal.Decimal
	Breakdown        string
}

// Calculate is pure: the same input and settings always give the same result,
// breakdown text included.
func Calculate(in Input, settings model.FeeSettings) Result {
	var res Result

	res.Quantity = decimal.Zero
	res.TotalCostBasis = decimal.Zero
	for _, alloc := range in.Allocations {
		res.Quantity = res.Quantity.Add(alloc.Quantity)
		res.TotalCostBasis = res.TotalCostBasis.Add(alloc.CostBasis)
	}
	res.TotalPrice = res.Quantity.Mul(in.PricePerUnit)

	res.Fees = fees(in.Fees, res.TotalPrice, settings)
	res.TotalFees = res.Fees.Total()

	res.Profit = res.TotalPrice.Sub(res.TotalCostBasis).Sub(res.TotalFees)
	res.ProfitPercentage = ROI(res.Profit, res.TotalCostBasis)

	res.Breakdown = breakdown(in, res)
	return res
}

// ROI is profit as a percentage of cost basis, zero when there is no cost basis.
func ROI(profit, costBasis decimal.Decimal) decimal.Decimal {
	if !costBasis.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(costBasis).Mul(hundred)
}

func fees(in FeeInput, total decimal.Decimal, settings model.FeeSettings) model.SaleFees {
	res := model.SaleFees{
		Shipping:          nonNegative(in.Shipping),
		Marketplace:       nonNegative(in.MarketplaceFee),
		PaymentProcessing: nonNegative(in.PaymentProcessing),
		Other:             decimal.Zero,
	}
	if in.UseMarketplaceRate {
		res.Marketplace = total.Mul(settings.MarketplaceFeeRate).Round(2)
	}
	if in.OtherEnabled {
		res.OtherName = in.OtherName
		res.Other = nonNegative(in.Other)
	}
	return res
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func breakdown(in Input, res Result) string {
	cur := in.Currency
	money := func(d decimal.Decimal) string { return model.FormatMoney(d, cur) }

	var sb strings.Builder
	sb.WriteString("Profit Details:\n")
	fmt.Fprintf(&sb, "Sale Amount: %s %s @ %s = %s\n", res.Quantity, in.Unit, money(in.PricePerUnit), money(res.TotalPrice))

	switch {
	case len(in.Allocations) > 1:
		sb.WriteString("Cost Basis Details:\n")
		for i, alloc := range in.Allocations {
			fmt.Fprintf(&sb, "  - Purchase %d: %s %s @ %s = %s\n",
				i+1, alloc.Quantity, in.Unit, money(alloc.CostBasisPerUnit), money(alloc.CostBasis))
		}
		fmt.Fprintf(&sb, "Total Cost Basis: %s\n", money(res.TotalCostBasis))
	case len(in.Allocations) == 1:
		alloc := in.Allocations[0]
		fmt.Fprintf(&sb, "Cost Basis: %s %s @ %s = %s\n", alloc.Quantity, in.Unit, money(alloc.CostBasisPerUnit), money(res.TotalCostBasis))
	}

	if res.TotalFees.IsPositive() {
		sb.WriteString("Fees:\n")
		feeLine := func(label string, amount decimal.Decimal) {
			if amount.IsPositive() {
				fmt.Fprintf(&sb, "  - %s: %s\n", label, money(amount))
			}
		}
		feeLine("Shipping", res.Fees.Shipping)
		feeLine("Seller Fee", res.Fees.Marketplace)
		feeLine("Payment Processing", res.Fees.PaymentProcessing)
		otherName := res.Fees.OtherName
		if otherName == "" {
			otherName = defaultOtherFee
		}
		feeLine(otherName, res.Fees.Other)
		fmt.Fprintf(&sb, "Total Fees: %s\n", money(res.TotalFees))
	}

	fmt.Fprintf(&sb, "Net Profit: %s (%s%% ROI)", money(res.Profit), res.ProfitPercentage.StringFixed(2))
	return sb.String()
}
