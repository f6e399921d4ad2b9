// Package allocation decides how much of each purchase lot is still unsold and
// builds the allocation set of a sale from user-picked (lot, quantity) pairs.
//
// Availability is derived: it is recomputed from the full sale ledger on every
// call and never cached.
package allocation

import (
	"errors"
	"fmt"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrNoAllocations    = errors.New("sale has no allocations")
	ErrInvalidQuantity  = errors.New("allocation quantity must be positive")
	ErrDuplicateLot     = errors.New("lot is allocated more than once")
	ErrLotNotFound      = errors.New("lot not found")
	ErrExceedsAvailable = errors.New("allocation exceeds available quantity")
)

// Error describes a rejected allocation request.
type Error struct {
	LotID     string
	LotDate   string
	Unit      model.Unit
	Requested decimal.Decimal
	Available decimal.Decimal
	Err       error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrExceedsAvailable) {
		return fmt.Sprintf("you can only sell up to %s %s from purchase dated %s", e.Available, e.Unit, e.LotDate)
	}
	return fmt.Sprintf("lot %s: %s", e.LotID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Request struct {
	LotID    string
	Quantity decimal.Decimal
}

type Resolver struct {
	lots  map[string]model.PurchaseLot
	order []string
	sales []model.SaleRecord
}

func NewResolver(lots []model.PurchaseLot, sales []model.SaleRecord) *Resolver {
	r := &Resolver{
		lots:  make(map[string]model.PurchaseLot, len(lots)),
		order: make([]string, 0, len(lots)),
		sales: sales,
	}
	for _, lot := range lots {
		r.lots[lot.ID] = lot
		r.order = append(r.order, lot.ID)
	}
	return r
}

func (r *Resolver) Lot(lotID string) (model.PurchaseLot, bool) {
	lot, ok := r.lots[lotID]
	return lot, ok
}

// Sold sums what every sale except excludeSaleID allocated from the lot.
func (r *Resolver) Sold(lotID, excludeSaleID string) decimal.Decimal {
	sold := decimal.Zero
	for _, sale := range r.sales {
		if excludeSaleID != "" && sale.ID == excludeSaleID {
			continue
		}
		for _, alloc := range sale.Allocations {
			if alloc.LotID == lotID {
				sold = sold.Add(alloc.Quantity)
			}
		}
	}
	return sold
}

// Available is the unsold quantity of a lot, floored at zero. Unknown lots have none.
func (r *Resolver) Available(lotID string) decimal.Decimal {
	return r.AvailableFor(lotID, "")
}

// AvailableFor is Available as seen by a sale being edited in place: the
// sale's own prior allocations do not count against it.
func (r *Resolver) AvailableFor(lotID, editingSaleID string) decimal.Decimal {
	lot, ok := r.lots[lotID]
	if !ok {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, lot.Quantity.Sub(r.Sold(lotID, editingSaleID)))
}

// AvailableLots lists lots with something left to sell, in ledger order.
func (r *Resolver) AvailableLots() []model.LotAvailability {
	res := make([]model.LotAvailability, 0, len(r.order))
	for _, id := range r.order {
		lot := r.lots[id]
		available := r.Available(id)
		if !available.IsPositive() {
			continue
		}
		res = append(res, model.LotAvailability{
			Lot:       lot,
			Sold:      r.Sold(id, ""),
			Available: available,
		})
	}
	return res
}

// Resolve validates requests against current availability and snapshots each
// lot's cost basis. editingSaleID is empty for a new sale.
func (r *Resolver) Resolve(reqs []Request, editingSaleID string) ([]model.LotAllocation, error) {
	if len(reqs) == 0 {
		return nil, ErrNoAllocations
	}

	seen := make(map[string]struct{}, len(reqs))
	res := make([]model.LotAllocation, 0, len(reqs))

	for _, req := range reqs {
		if !req.Quantity.IsPositive() {
			return nil, &Error{LotID: req.LotID, Requested: req.Quantity, Err: ErrInvalidQuantity}
		}

		if _, dup := seen[req.LotID]; dup {
			return nil, &Error{LotID: req.LotID, Requested: req.Quantity, Err: ErrDuplicateLot}
		}
		seen[req.LotID] = struct{}{}

		lot, ok := r.lots[req.LotID]
		if !ok {
			return nil, &Error{LotID: req.LotID, Requested: req.Quantity, Err: ErrLotNotFound}
		}

		available := r.AvailableFor(req.LotID, editingSaleID)
		if req.Quantity.GreaterThan(available) {
			return nil, &Error{
				LotID:     lot.ID,
				LotDate:   lot.Date.Format("2006-01-02"),
				Unit:      lot.Unit,
				Requested: req.Quantity,
				Available: available,
				Err:       ErrExceedsAvailable,
			}
		}

		res = append(res, newAllocation(lot, req.Quantity))
	}

	return res, nil
}

// Draft builds allocations for a live preview: no availability checks, and a
// missing lot contributes zero cost basis instead of failing.
func (r *Resolver) Draft(reqs []Request) []model.LotAllocation {
	res := make([]model.LotAllocation, 0, len(reqs))
	for _, req := range reqs {
		if !req.Quantity.IsPositive() {
			continue
		}
		lot, ok := r.lots[req.LotID]
		if !ok {
			res = append(res, model.LotAllocation{
				LotID:            req.LotID,
				Quantity:         req.Quantity,
				CostBasisPerUnit: decimal.Zero,
				CostBasis:        decimal.Zero,
			})
			continue
		}
		res = append(res, newAllocation(lot, req.Quantity))
	}
	return res
}

// OriginalCost is what the allocated quantity cost at the lots' nominal prices.
func (r *Resolver) OriginalCost(allocs []model.LotAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range allocs {
		if lot, ok := r.lots[alloc.LotID]; ok {
			total = total.Add(alloc.Quantity.Mul(lot.PricePerUnit))
		}
	}
	return total
}

func newAllocation(lot model.PurchaseLot, quantity decimal.Decimal) model.LotAllocation {
	perUnit := lot.CostBasisPerUnit()
	return model.LotAllocation{
		LotID:            lot.ID,
		LotDate:          lot.Date,
		Quantity:         quantity,
		CostBasisPerUnit: perUnit,
		CostBasis:        quantity.Mul(perUnit),
	}
}
