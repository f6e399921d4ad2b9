package pureModel

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const GoldMetal = "Gold"

type MetalQuote struct {
	Bid decimal.Decimal `json:"bid"`
	Ask decimal.Decimal `json:"ask"`
}

// SpotPrices is keyed by metal name, e.g. "Gold".
type SpotPrices map[string]MetalQuote

type Product struct {
	ID    ProductID `json:"id"`
	Title string    `json:"title"`
}

// ProductID accepts both numeric and string ids.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ProductID(n.String())
	return nil
}
