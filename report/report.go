/*
Package report derives read-only views from the inventory and the
sales log.

  Nothing here caches: every report is recomputed from the
  authoritative drug list and transaction sequence on each call. A
  drug with an unparseable production date is skipped with a warning
  and never fails the whole report.
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

// NearExpiryItem pairs a drug with its remaining shelf-life days.
// Remain may be negative: already-expired drugs are near-expiry too.
type NearExpiryItem struct {
	Drug   inventory.Drug
	Remain int
}

// NearExpiry lists drugs with remain <= their near-expiry threshold.
func NearExpiry(inv *inventory.Inventory) []NearExpiryItem {
	now := inv.Now()
	var items []NearExpiryItem
	for _, d := range inv.All() {
		remain, ok := d.RemainingDays(now)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"drug": d.Name,
				"date": d.ProductionDate,
			}).Warn("skipping drug with malformed production date")
			continue
		}
		if remain <= d.NearExpiryThresholdDays {
			items = append(items, NearExpiryItem{Drug: d, Remain: remain})
		}
	}
	return items
}

// ExpiredCount counts drugs strictly past their shelf life (remain < 0).
func ExpiredCount(inv *inventory.Inventory) int {
	now := inv.Now()
	count := 0
	for _, d := range inv.All() {
		remain, ok := d.RemainingDays(now)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"drug": d.Name,
				"date": d.ProductionDate,
			}).Warn("skipping drug with malformed production date")
			continue
		}
		if remain < 0 {
			count++
		}
	}
	return count
}

// =============================================================================
// SALES RANKING
// =============================================================================

// BySales returns the drugs sorted by TotalSold descending. The sort
// is stable so equal sellers keep their inventory order, which makes
// top/bottom ranks deterministic.
func BySales(drugs []inventory.Drug) []inventory.Drug {
	sorted := make([]inventory.Drug, len(drugs))
	copy(sorted, drugs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalSold > sorted[j].TotalSold
	})
	return sorted
}

// TopSold returns the n best sellers, best first. n is clamped to
// [0, len(drugs)].
func TopSold(drugs []inventory.Drug, n int) []inventory.Drug {
	sorted := BySales(drugs)
	n = clamp(n, len(sorted))
	return sorted[:n]
}

// BottomSold returns the n worst sellers, worst first (the last element
// of the descending order is rank 1 here). n is clamped like TopSold.
func BottomSold(drugs []inventory.Drug, n int) []inventory.Drug {
	sorted := BySales(drugs)
	n = clamp(n, len(sorted))
	out := make([]inventory.Drug, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sorted[len(sorted)-1-i])
	}
	return out
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// =============================================================================
// SUMMARY
// =============================================================================

// SalesSummary is the header block of the sales report.
type SalesSummary struct {
	DrugCount  int
	TotalSold  int
	TotalStock int

	// Revenue sums price*totalSold over priced drugs only.
	Revenue decimal.Decimal
}

func Summary(inv *inventory.Inventory) SalesSummary {
	s := SalesSummary{Revenue: decimal.Zero}
	for _, d := range inv.All() {
		s.DrugCount++
		s.TotalSold += d.TotalSold
		s.TotalStock += d.Stock
		if !d.Price.IsZero() {
			s.Revenue = s.Revenue.Add(d.Price.Mul(decimal.NewFromInt(int64(d.TotalSold))))
		}
	}
	return s
}

// Trend replays the sales log into per-category monthly net sales,
// resolving names through the current inventory.
func Trend(log *sales.Log, inv *inventory.Inventory) map[string]map[string]int {
	return log.MonthlyByCategory(inv.CategoryOf())
}
