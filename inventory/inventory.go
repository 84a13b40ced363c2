/*
inventory.go - The drug ledger

PURPOSE:
  The Inventory owns the authoritative in-memory list of drug records.
  All reads are linear scans over that list; no derived index is kept,
  so there is nothing to fall out of sync. The scale is a single
  pharmacy counter, not a warehouse.

MUTATION RULES:
  Sell:    stock -= qty, totalSold += qty
  Return:  stock += qty, totalSold = max(0, totalSold-qty)
  Wastage: stock -= qty, totalSold untouched
  Every rule validates before mutating: a failed operation leaves the
  record exactly as it was.

EXPIRY BLOCKING:
  When Policy.BlockExpiredSales is set (the default), Sell refuses
  drugs past their shelf life, and refuses drugs whose production date
  does not parse - an unverifiable date is treated as unsellable.

IDENTITY:
  The Inventory has no concept of users or roles. Admin gating for
  modify/delete is the caller's job.
*/
package inventory

import (
	"strings"

	"github.com/warp/pharmacy-pos/calendar"
)

// Policy holds the behavior toggles that varied across the system's
// lineage. Both are explicit configuration rather than baked in.
type Policy struct {
	// BlockExpiredSales makes Sell fail with ErrExpired for drugs past
	// their shelf life.
	BlockExpiredSales bool
}

// DefaultPolicy is the de-facto final behavior: expired drugs cannot
// be sold.
func DefaultPolicy() Policy { return Policy{BlockExpiredSales: true} }

// Inventory is the mutable drug ledger.
type Inventory struct {
	drugs  []Drug
	policy Policy

	// Now supplies the current day for expiry checks. Tests pin it.
	Now func() calendar.Date
}

func New(policy Policy) *Inventory {
	return &Inventory{policy: policy, Now: calendar.Today}
}

// NewFrom builds an Inventory over previously loaded records.
func NewFrom(drugs []Drug, policy Policy) *Inventory {
	inv := New(policy)
	inv.drugs = append(inv.drugs, drugs...)
	return inv
}

// =============================================================================
// RECORD LIFECYCLE
// =============================================================================

// Add appends a new drug record. A freshly added drug has no sales
// history regardless of what the caller set.
func (inv *Inventory) Add(d Drug) {
	d.TotalSold = 0
	if d.Stock < 0 {
		d.Stock = 0
	}
	inv.drugs = append(inv.drugs, d)
}

// All returns a copy of every record in insertion order.
func (inv *Inventory) All() []Drug {
	out := make([]Drug, len(inv.drugs))
	copy(out, inv.drugs)
	return out
}

func (inv *Inventory) Len() int { return len(inv.drugs) }

// Replace swaps the whole record set, used by the reload action.
func (inv *Inventory) Replace(drugs []Drug) {
	inv.drugs = append(inv.drugs[:0:0], drugs...)
}

// FindByNamePrefix returns every drug whose name contains the given
// substring (case-sensitive).
func (inv *Inventory) FindByNamePrefix(substr string) []Drug {
	var out []Drug
	for _, d := range inv.drugs {
		if strings.Contains(d.Name, substr) {
			out = append(out, d)
		}
	}
	return out
}

// FindByCategory returns every drug in the exact category.
func (inv *Inventory) FindByCategory(category string) []Drug {
	var out []Drug
	for _, d := range inv.drugs {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// CategoryOf maps every current drug name to its category, for trend
// resolution. Duplicated names keep the first occurrence.
func (inv *Inventory) CategoryOf() map[string]string {
	m := make(map[string]string, len(inv.drugs))
	for _, d := range inv.drugs {
		if _, seen := m[d.Name]; !seen {
			m[d.Name] = d.Category
		}
	}
	return m
}

// ModifyByName applies a partial update to the first drug with the
// exact name. Negative Stock/TotalSold values in the update are
// ignored, matching the "-1 keeps the old value" entry convention.
func (inv *Inventory) ModifyByName(name string, u Update) bool {
	i := inv.indexOf(name)
	if i < 0 {
		return false
	}
	d := &inv.drugs[i]
	if u.Name != nil && *u.Name != "" {
		d.Name = *u.Name
	}
	if u.Category != nil && *u.Category != "" {
		d.Category = *u.Category
	}
	if u.Manufacturer != nil && *u.Manufacturer != "" {
		d.Manufacturer = *u.Manufacturer
	}
	if u.Specification != nil && *u.Specification != "" {
		d.Specification = *u.Specification
	}
	if u.ProductionDate != nil && *u.ProductionDate != "" {
		d.ProductionDate = *u.ProductionDate
	}
	if u.Stock != nil && *u.Stock >= 0 {
		d.Stock = *u.Stock
	}
	if u.TotalSold != nil && *u.TotalSold >= 0 {
		d.TotalSold = *u.TotalSold
	}
	if u.Price != nil {
		d.Price = *u.Price
	}
	return true
}

// DeleteByName removes every drug with the exact name and returns how
// many were removed.
func (inv *Inventory) DeleteByName(name string) int {
	kept := inv.drugs[:0]
	removed := 0
	for _, d := range inv.drugs {
		if d.Name == name {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	inv.drugs = kept
	return removed
}

// =============================================================================
// STOCK MUTATIONS
// =============================================================================

// Sell decrements stock and increments the cumulative sold counter.
// Validation order follows the original flow: quantity, existence,
// expiry, then stock. Any failure leaves the record untouched.
func (inv *Inventory) Sell(name string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i := inv.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	d := &inv.drugs[i]

	if inv.policy.BlockExpiredSales {
		remain, ok := d.RemainingDays(inv.Now())
		if !ok {
			return ErrBadProductionDate
		}
		if remain < 0 {
			return &ExpiredError{Name: d.Name, ExpiredDays: -remain}
		}
	}

	if d.Stock < qty {
		return &InsufficientStockError{Name: d.Name, Available: d.Stock, Requested: qty}
	}
	d.Stock -= qty
	d.TotalSold += qty
	return nil
}

// Return rolls a sale back: stock goes up, the sold counter goes down,
// floored at zero. Returns are accepted even past the drug's expiry.
func (inv *Inventory) Return(name string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i := inv.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	d := &inv.drugs[i]
	d.Stock += qty
	if d.TotalSold < qty {
		d.TotalSold = 0
	} else {
		d.TotalSold -= qty
	}
	return nil
}

// Wastage writes stock off without touching the sold counter.
func (inv *Inventory) Wastage(name string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i := inv.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	d := &inv.drugs[i]
	if d.Stock < qty {
		return &InsufficientStockError{Name: d.Name, Available: d.Stock, Requested: qty}
	}
	d.Stock -= qty
	return nil
}

// Get returns the first drug with the exact name.
func (inv *Inventory) Get(name string) (Drug, bool) {
	i := inv.indexOf(name)
	if i < 0 {
		return Drug{}, false
	}
	return inv.drugs[i], true
}

func (inv *Inventory) indexOf(name string) int {
	for i := range inv.drugs {
		if inv.drugs[i].Name == name {
			return i
		}
	}
	return -1
}
