// Package discount turns a nominal purchase price into the effective price
// by applying independently toggled percentage adjustments.
//
// Every rate is applied to the original base price, so the result does not
// depend on the order the adjustments are evaluated in.
package discount

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type methodRate struct {
	method model.PaymentMethod
	rate   decimal.Decimal
}

// canonical enumeration order
var paymentMethodRates = []methodRate{
	{model.PaymentAmexSub, decimal.Zero},
	{model.PaymentCitiAA, decimal.RequireFromString("0.018")},
	{model.PaymentBofaPlatHonors, decimal.RequireFromString("0.02625")},
	{model.PaymentVenmo, decimal.RequireFromString("0.05")},
	{model.PaymentCostcoCiti, decimal.RequireFromString("0.038")},
	{model.PaymentUsBankSmartly, decimal.RequireFromString("0.04")},
	{model.PaymentChaseInkPremier, decimal.RequireFromString("0.025")},
	{model.PaymentOther, decimal.Zero},
}

const (
	surchargeLabel       = "Expedited payment"
	membershipLabel      = "Executive membership"
	defaultOtherDiscount = "Other discount"
	defaultOtherFee      = "Other fee"
	defaultOtherMethod   = "Other"
)

var hundred = decimal.NewFromInt(100)

// PaymentMethods lists the known payment methods in canonical order.
func PaymentMethods() []model.PaymentMethod {
	res := make([]model.PaymentMethod, 0, len(paymentMethodRates))
	for _, mr := range paymentMethodRates {
		res = append(res, mr.method)
	}
	return res
}

// RebateRate returns the rebate of a payment method and whether the method is known.
func RebateRate(method model.PaymentMethod) (decimal.Decimal, bool) {
	for _, mr := range paymentMethodRates {
		if mr.method == method {
			return mr.rate, true
		}
	}
	return decimal.Zero, false
}

// Selection is the set of adjustments toggled on a form.
type Selection struct {
	PaymentMethods     []model.PaymentMethod
	OtherPaymentMethod string
	ExpeditedPayment   bool
	Membership         bool
	OtherEnabled       bool
	OtherName          string
	// OtherRate is the percentage as typed by the user, "1.5" means 1.5%.
	OtherRate string
	// OtherIsFee adds the other adjustment instead of subtracting it.
	OtherIsFee bool
}

// Line is one applied adjustment. Amount is the signed impact on the price.
type Line struct {
	Label  string
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

type Result struct {
	Base      decimal.Decimal
	Effective decimal.Decimal
	Lines     []Line
	Breakdown string
}

func (r Result) Applied() bool {
	return !r.Effective.Equal(r.Base)
}

// Apply computes the effective price of base under sel and renders the breakdown.
func Apply(base decimal.Decimal, sel Selection, settings model.FeeSettings, cur model.Currency) Result {
	res := Result{Base: base, Effective: base}

	add := func(label string, rate decimal.Decimal, sign int64) {
		amount := base.Mul(rate).Mul(decimal.NewFromInt(sign))
		res.Effective = res.Effective.Add(amount)
		res.Lines = append(res.Lines, Line{Label: label, Rate: rate, Amount: amount})
	}

	selected := selectedMethods(sel.PaymentMethods)
	for _, method := range selected {
		rate, _ := RebateRate(method)
		if rate.IsPositive() {
			add(string(method), rate, -1)
		}
	}

	if sel.ExpeditedPayment && !settings.SurchargeRate.IsZero() {
		add(surchargeLabel, settings.SurchargeRate, 1)
	}

	if sel.Membership && !settings.MembershipRebateRate.IsZero() {
		add(membershipLabel, settings.MembershipRebateRate, -1)
	}

	if sel.OtherEnabled {
		rate := ParseRate(sel.OtherRate)
		if !rate.IsZero() {
			label, sign := sel.OtherName, int64(-1)
			if sel.OtherIsFee {
				sign = 1
			}
			if label == "" {
				label = defaultOtherDiscount
				if sel.OtherIsFee {
					label = defaultOtherFee
				}
			}
			add(label, rate, sign)
		}
	}

	res.Breakdown = breakdown(res, selected, sel.OtherPaymentMethod, cur)
	return res
}

// ParseRate reads a user-typed percentage into a fraction. Anything
// unparseable or negative is zero; the direction comes from OtherIsFee.
func ParseRate(percent string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(percent))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Div(hundred)
}

func selectedMethods(methods []model.PaymentMethod) []model.PaymentMethod {
	res := make([]model.PaymentMethod, 0, len(methods))
	for _, mr := range paymentMethodRates {
		if slices.Contains(methods, mr.method) {
			res = append(res, mr.method)
		}
	}
	return res
}

func breakdown(res Result, methods []model.PaymentMethod, otherMethod string, cur model.Currency) string {
	var sb strings.Builder

	if len(res.Lines) > 0 {
		items := make([]string, 0, len(res.Lines))
		for _, line := range res.Lines {
			items = append(items, fmt.Sprintf("%s: %s%% (%s)", line.Label, model.FormatPercent(line.Rate), model.FormatSignedMoney(line.Amount, cur)))
		}
		sb.WriteString(fmt.Sprintf("Applied discounts: %s. Original price: %s", strings.Join(items, ", "), model.FormatMoney(res.Base, cur)))
	}

	if len(methods) > 0 {
		names := make([]string, 0, len(methods))
		for _, m := range methods {
			if m == model.PaymentOther {
				name := otherMethod
				if name == "" {
					name = defaultOtherMethod
				}
				names = append(names, name)
				continue
			}
			names = append(names, string(m))
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Payment methods: " + strings.Join(names, ", "))
	}

	return sb.String()
}
