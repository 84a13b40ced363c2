package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pharmacy-pos/calendar"
)

// Drug is a single inventoried product. Drugs are keyed by Name; the
// ledger does not enforce uniqueness, and name queries return matches
// in insertion order.
//
// Stock and TotalSold are independent counters: sales move both,
// returns move both (TotalSold floored at zero), wastage moves only
// Stock. Both are always >= 0.
type Drug struct {
	Name           string
	Category       string
	Manufacturer   string
	Specification  string
	ProductionDate string // "YYYY-MM-DD", validated at entry
	Stock          int
	TotalSold      int

	// Per-drug shelf-life policy. These rule once set; the category
	// configuration is only consulted to fill them in at creation time.
	ShelfLifeDays           int
	NearExpiryThresholdDays int

	// Price is the unit sale price. Zero means unpriced; unpriced drugs
	// are excluded from revenue figures.
	Price decimal.Decimal
}

// Expiry returns the expiry date (production date + shelf life).
// ok=false when the production date does not parse.
func (d Drug) Expiry() (calendar.Date, bool) {
	prod, ok := calendar.Parse(d.ProductionDate)
	if !ok {
		return calendar.Date{}, false
	}
	return prod.AddDays(d.ShelfLifeDays), true
}

// RemainingDays returns the signed days until expiry as of now.
// Negative means already expired. ok=false on a malformed date.
func (d Drug) RemainingDays(now calendar.Date) (int, bool) {
	expiry, ok := d.Expiry()
	if !ok {
		return 0, false
	}
	return calendar.DaysBetween(now, expiry), true
}

// Update is a partial in-place modification. Nil fields are left
// untouched; negative counters are rejected by ModifyByName.
type Update struct {
	Name           *string
	Category       *string
	Manufacturer   *string
	Specification  *string
	ProductionDate *string
	Stock          *int
	TotalSold      *int
	Price          *decimal.Decimal
}
