package storeModel

import "github.com/shopspring/decimal"

// Dates are ISO-8601 strings, decimals marshal as JSON strings.

type Purchase struct {
	ID                    string          `json:"id"`
	Date                  string          `json:"date"`
	Amount                decimal.Decimal `json:"amount"`
	Unit                  string          `json:"unit"`
	PricePerUnit          decimal.Decimal `json:"pricePerUnit"`
	EffectivePricePerUnit *decimal.Decimal `json:"effectivePricePerUnit,omitempty"`
	Currency              string          `json:"currency"`
	OrderNumber           string          `json:"orderNumber"`
	Notes                 string          `json:"notes,omitempty"`
	GeneratedNotes        string          `json:"generatedNotes,omitempty"`
	TotalPrice            decimal.Decimal `json:"totalPrice"`
	EffectiveTotalPrice   *decimal.Decimal `json:"effectiveTotalPrice,omitempty"`
	DiscountsApplied      bool            `json:"discountsApplied"`
	PaymentMethods        []string        `json:"paymentMethods,omitempty"`
	OtherPaymentMethod    string          `json:"otherPaymentMethod,omitempty"`
	Source                string          `json:"source,omitempty"`
	ProductID             string          `json:"productId,omitempty"`
	ProductName           string          `json:"productName,omitempty"`
	CreatedAt             string          `json:"createdAt,omitempty"`
}

type PurchaseAllocation struct {
	PurchaseID       string          `json:"purchaseId"`
	PurchaseDate     string          `json:"purchaseDate"`
	Amount           decimal.Decimal `json:"amount"`
	CostBasisPerUnit decimal.Decimal `json:"costBasisPerUnit"`
	CostBasis        decimal.Decimal `json:"costBasis"`
}

type FeeDetails struct {
	Shipping          decimal.Decimal `json:"shipping"`
	SellerFee         decimal.Decimal `json:"sellerFee"`
	PaymentProcessing decimal.Decimal `json:"paymentProcessing"`
	OtherName         string          `json:"otherName,omitempty"`
	Other             decimal.Decimal `json:"other"`
}

type Sale struct {
	ID                     string               `json:"id"`
	Date                   string               `json:"date"`
	Amount                 decimal.Decimal      `json:"amount"`
	Unit                   string               `json:"unit"`
	PricePerUnit           decimal.Decimal      `json:"pricePerUnit"`
	Currency               string               `json:"currency"`
	Buyer                  string               `json:"buyer,omitempty"`
	OrderNumber            string               `json:"orderNumber"`
	Notes                  string               `json:"notes,omitempty"`
	GeneratedNotes         string               `json:"generatedNotes,omitempty"`
	TotalPrice             decimal.Decimal      `json:"totalPrice"`
	OriginalPurchasePrice  decimal.Decimal      `json:"originalPurchasePrice"`
	EffectivePurchasePrice decimal.Decimal      `json:"effectivePurchasePrice"`
	Fees                   decimal.Decimal      `json:"fees"`
	FeeDetails             *FeeDetails          `json:"feeDetails,omitempty"`
	Profit                 decimal.Decimal      `json:"profit"`
	ProfitPercentage       decimal.Decimal      `json:"profitPercentage"`
	PurchaseAllocations    []PurchaseAllocation `json:"purchaseAllocations,omitempty"`
	CreatedAt              string               `json:"createdAt,omitempty"`
	UpdatedAt              string               `json:"updatedAt,omitempty"`

	// single-purchase records written before allocations existed
	PurchaseID   string `json:"purchaseId,omitempty"`
	PurchaseDate string `json:"purchaseDate,omitempty"`
}

type FeeSettings struct {
	SurchargeRate        decimal.Decimal `json:"surchargeRate"`
	MembershipRebateRate decimal.Decimal `json:"membershipRebateRate"`
	MarketplaceFeeRate   decimal.Decimal `json:"marketplaceFeeRate"`
}
