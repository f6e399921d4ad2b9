package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioSummary struct {
	CurrentHoldings  decimal.Decimal
	Unit             Unit
	Currency         Currency
	TotalInvestment  decimal.Decimal
	TotalProfit      decimal.Decimal
	ProfitPercentage decimal.Decimal
	SpotPrice        *SpotPrice
	EstimatedValue   decimal.Decimal
	PurchasesCount   int
	SalesCount       int
}

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionSale     TransactionType = "sale"
)

// Transaction is one row of the merged purchase/sale history.
type Transaction struct {
	ID             string
	Date           time.Time
	Type           TransactionType
	Quantity       decimal.Decimal
	Unit           Unit
	Price          decimal.Decimal
	Total          decimal.Decimal
	Currency       Currency
	ProductName    string
	Source         string
	PaymentMethods []PaymentMethod
	Notes          string
	Profit         *decimal.Decimal
	Allocations    []AllocationView
}

type AllocationView struct {
	LotAllocation
	ProductName string
}

type LotAvailability struct {
	Lot       PurchaseLot
	Sold      decimal.Decimal
	Available decimal.Decimal
}

type SpotPrice struct {
	Metal    string
	Bid      decimal.Decimal
	Ask      decimal.Decimal
	Currency Currency
	AsOf     time.Time
}

type Product struct {
	ID   string
	Name string
}

type ProductCatalog struct {
	Products  []Product
	FetchedAt time.Time
}

// LedgerReport is everything the spreadsheet export needs.
type LedgerReport struct {
	GeneratedAt time.Time
	Purchases   []PurchaseLot
	Sales       []SaleRecord
	Summary     PortfolioSummary
}
