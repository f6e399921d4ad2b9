package restModel

import (
	"bytes"
	"encoding/json"

	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/shopspring/decimal"
)

// FormValue is a number typed into a form. Clients may send it as a JSON
// number or as a string; empty means not filled in.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

type OtherDiscount struct {
	Name  string    `json:"name"`
	Rate  FormValue `json:"rate"`
	IsFee bool      `json:"isFee"`
}

type PurchaseRequest struct {
	Date               string         `json:"date"`
	Amount             FormValue      `json:"amount"`
	PricePerUnit       FormValue      `json:"pricePerUnit"`
	Unit               string         `json:"unit"`
	Currency           string         `json:"currency"`
	Source             string         `json:"source"`
	OrderNumber        string         `json:"orderNumber"`
	Notes              string         `json:"notes"`
	ProductID          string         `json:"productId"`
	ProductName        string         `json:"productName"`
	PaymentMethods     []string       `json:"paymentMethods"`
	OtherPaymentMethod string         `json:"otherPaymentMethod"`
	ExpeditedPayment   bool           `json:"expeditedPayment"`
	Membership         bool           `json:"executiveMembership"`
	OtherDiscount      *OtherDiscount `json:"otherDiscount"`
}

type Adjustment struct {
	Label  string          `json:"label"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type PurchasePreviewResponse struct {
	Amount                decimal.Decimal `json:"amount"`
	PricePerUnit          decimal.Decimal `json:"pricePerUnit"`
	TotalPrice            decimal.Decimal `json:"totalPrice"`
	EffectiveTotalPrice   decimal.Decimal `json:"effectiveTotalPrice"`
	EffectivePricePerUnit decimal.Decimal `json:"effectivePricePerUnit"`
	Adjustments           []Adjustment    `json:"adjustments"`
	GeneratedNotes        string          `json:"generatedNotes"`
}

type OtherFee struct {
	Name   string    `json:"name"`
	Amount FormValue `json:"amount"`
}

type SaleFeesRequest struct {
	Shipping           FormValue `json:"shipping"`
	SellerFee          FormValue `json:"sellerFee"`
	UseMarketplaceRate bool      `json:"useMarketplaceRate"`
	PaymentProcessing  FormValue `json:"paymentProcessing"`
	Other              *OtherFee `json:"other"`
}

type AllocationRequest struct {
	PurchaseID string    `json:"purchaseId"`
	Amount     FormValue `json:"amount"`
}

type SaleRequest struct {
	Date         string              `json:"date"`
	PricePerUnit FormValue           `json:"pricePerUnit"`
	Unit         string              `json:"unit"`
	Currency     string              `json:"currency"`
	Buyer        string              `json:"buyer"`
	OrderNumber  string              `json:"orderNumber"`
	Notes        string              `json:"notes"`
	Fees         SaleFeesRequest     `json:"fees"`
	Allocations  []AllocationRequest `json:"purchaseAllocations"`
}

type SalePreviewResponse struct {
	Amount                 decimal.Decimal                 `json:"amount"`
	TotalPrice             decimal.Decimal                 `json:"totalPrice"`
	OriginalPurchasePrice  decimal.Decimal                 `json:"originalPurchasePrice"`
	EffectivePurchasePrice decimal.Decimal                 `json:"effectivePurchasePrice"`
	Fees                   decimal.Decimal                 `json:"fees"`
	FeeDetails             storeModel.FeeDetails           `json:"feeDetails"`
	Profit                 decimal.Decimal                 `json:"profit"`
	ProfitPercentage       decimal.Decimal                 `json:"profitPercentage"`
	PurchaseAllocations    []storeModel.PurchaseAllocation `json:"purchaseAllocations"`
	GeneratedNotes         string                          `json:"generatedNotes"`
}

type AvailableLot struct {
	Purchase  storeModel.Purchase `json:"purchase"`
	Sold      decimal.Decimal     `json:"sold"`
	Available decimal.Decimal     `json:"available"`
}

type SpotPrice struct {
	Metal    string          `json:"metal"`
	Bid      decimal.Decimal `json:"bid"`
	Ask      decimal.Decimal `json:"ask"`
	Currency string          `json:"currency"`
	AsOf     string          `json:"asOf"`
}

type Summary struct {
	CurrentHoldings  decimal.Decimal `json:"currentHoldings"`
	Unit             string          `json:"unit"`
	Currency         string          `json:"currency"`
	TotalInvestment  decimal.Decimal `json:"totalInvestment"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	SpotPrice        *SpotPrice      `json:"spotPrice,omitempty"`
	EstimatedValue   decimal.Decimal `json:"estimatedValue"`
	PurchasesCount   int             `json:"purchasesCount"`
	SalesCount       int             `json:"salesCount"`
}

type TransactionAllocation struct {
	PurchaseID   string          `json:"purchaseId"`
	PurchaseDate string          `json:"purchaseDate"`
	Amount       decimal.Decimal `json:"amount"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	ProductName  string          `json:"productName,omitempty"`
}

type Transaction struct {
	ID             string                  `json:"id"`
	Date           string                  `json:"date"`
	Type           string                  `json:"type"`
	Amount         decimal.Decimal         `json:"amount"`
	Unit           string                  `json:"unit"`
	Price          decimal.Decimal         `json:"price"`
	Total          decimal.Decimal         `json:"total"`
	Currency       string                  `json:"currency"`
	ProductName    string                  `json:"productName,omitempty"`
	Source         string                  `json:"source,omitempty"`
	PaymentMethods []string                `json:"paymentMethods,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	Profit         *decimal.Decimal        `json:"profit,omitempty"`
	Allocations    []TransactionAllocation `json:"allocations,omitempty"`
}

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Products struct {
	Products  []Product `json:"products"`
	FetchedAt string    `json:"fetchedAt,omitempty"`
}

type UploadResponse struct {
	Link string `json:"link"`
}
