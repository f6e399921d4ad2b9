package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentAmexSub         PaymentMethod = "amexSub"
	PaymentCitiAA          PaymentMethod = "citiAA"
	PaymentBofaPlatHonors  PaymentMethod = "bofaPlatHonors"
	PaymentVenmo           PaymentMethod = "venmo"
	PaymentCostcoCiti      PaymentMethod = "costcoCiti"
	PaymentUsBankSmartly   PaymentMethod = "usBankSmartly"
	PaymentChaseInkPremier PaymentMethod = "chaseInkPremier"
	PaymentOther           PaymentMethod = "other"
)

// PurchaseLot is a single recorded purchase. Pricing is fixed at creation.
type PurchaseLot struct {
	ID                    string
	Date                  time.Time
	Quantity              decimal.Decimal
	Unit                  Unit
	PricePerUnit          decimal.Decimal
	EffectivePricePerUnit decimal.Decimal
	Currency              Currency
	TotalPrice            decimal.Decimal
	EffectiveTotalPrice   decimal.Decimal
	DiscountsApplied      bool
	Notes                 string
	Breakdown             string
	Source                string
	OrderNumber           string
	PaymentMethods        []PaymentMethod
	OtherPaymentMethod    string
	ProductID             string
	ProductName           string
	CreatedAt             time.Time
}

// CostBasisPerUnit is the effective price recorded at creation. A fully
// discounted lot has a zero cost basis.
func (l PurchaseLot) CostBasisPerUnit() decimal.Decimal {
	return l.EffectivePricePerUnit
}

// Investment is the effective total recorded at creation.
func (l PurchaseLot) Investment() decimal.Decimal {
	return l.EffectiveTotalPrice
}

func (l PurchaseLot) DisplayNotes() string {
	return ComposeNotes(l.Notes, l.Breakdown)
}

// LotAllocation is the part of a lot consumed by one sale. LotID is a weak reference.
type LotAllocation struct {
	LotID            string
	LotDate          time.Time
	Quantity         decimal.Decimal
	CostBasisPerUnit decimal.Decimal
	CostBasis        decimal.Decimal
}

type SaleFees struct {
	Shipping          decimal.Decimal
	Marketplace       decimal.Decimal
	PaymentProcessing decimal.Decimal
	OtherName         string
	Other             decimal.Decimal
}

func (f SaleFees) Total() decimal.Decimal {
	return f.Shipping.Add(f.Marketplace).Add(f.PaymentProcessing).Add(f.Other)
}

type SaleRecord struct {
	ID                    string
	Date                  time.Time
	Quantity              decimal.Decimal
	Unit                  Unit
	PricePerUnit          decimal.Decimal
	Currency              Currency
	Buyer                 string
	OrderNumber           string
	Notes                 string
	Breakdown             string
	TotalPrice            decimal.Decimal
	OriginalPurchasePrice decimal.Decimal
	TotalCostBasis        decimal.Decimal
	Fees                  SaleFees
	TotalFees             decimal.Decimal
	Profit                decimal.Decimal
	ProfitPercentage      decimal.Decimal
	Allocations           []LotAllocation
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (s SaleRecord) DisplayNotes() string {
	return ComposeNotes(s.Notes, s.Breakdown)
}

// ComposeNotes joins the user's note and the generated breakdown for display.
func ComposeNotes(user, generated string) string {
	switch {
	case user == "":
		return generated
	case generated == "":
		return user
	default:
		return user + "\n\n" + generated
	}
}

// FeeSettings holds rates as fractions, 0.01 is 1%.
type FeeSettings struct {
	SurchargeRate        decimal.Decimal
	MembershipRebateRate decimal.Decimal
	MarketplaceFeeRate   decimal.Decimal
}
