package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pharmacy-pos/calendar"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/report"
	"github.com/warp/pharmacy-pos/sales"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestInventory(t *testing.T, today string, drugs ...inventory.Drug) *inventory.Inventory {
	t.Helper()
	inv := inventory.NewFrom(drugs, inventory.DefaultPolicy())
	inv.Now = func() calendar.Date { return calendar.MustParse(today) }
	return inv
}

func drug(name string, sold int) inventory.Drug {
	return inventory.Drug{
		Name:                    name,
		Category:                "Pain",
		ProductionDate:          "2024-01-01",
		Stock:                   10,
		TotalSold:               sold,
		ShelfLifeDays:           365,
		NearExpiryThresholdDays: 30,
	}
}

// =============================================================================
// NEAR-EXPIRY AND EXPIRED
// =============================================================================

func TestNearExpiry_IncludesExpiringAndExpired(t *testing.T) {
	// GIVEN: Aspirin expires 2024-12-31 with a 30-day threshold
	// WHEN: today is 2024-12-20 (11 days remain)
	// THEN: the report lists it with Remain=11
	inv := newTestInventory(t, "2024-12-20", drug("Aspirin", 0))

	items := report.NearExpiry(inv)
	require.Len(t, items, 1)
	assert.Equal(t, "Aspirin", items[0].Drug.Name)
	assert.Equal(t, 11, items[0].Remain)
}

func TestNearExpiry_NegativeRemainStillListed(t *testing.T) {
	// Already-expired drugs are near-expiry by definition.
	inv := newTestInventory(t, "2025-02-01", drug("Aspirin", 0))

	items := report.NearExpiry(inv)
	require.Len(t, items, 1)
	assert.Less(t, items[0].Remain, 0)
}

func TestNearExpiry_FreshStockExcluded(t *testing.T) {
	inv := newTestInventory(t, "2024-03-01", drug("Aspirin", 0))
	assert.Empty(t, report.NearExpiry(inv))
}

func TestNearExpiry_MalformedDateSkippedNotFatal(t *testing.T) {
	bad := drug("Mystery", 0)
	bad.ProductionDate = "2024-1-1"
	inv := newTestInventory(t, "2024-12-20", bad, drug("Aspirin", 0))

	items := report.NearExpiry(inv)
	require.Len(t, items, 1, "bad record skipped, report survives")
	assert.Equal(t, "Aspirin", items[0].Drug.Name)
}

func TestExpiredCount(t *testing.T) {
	fresh := drug("Fresh", 0)
	fresh.ProductionDate = "2024-11-01"
	bad := drug("Mystery", 0)
	bad.ProductionDate = "not-a-date"

	inv := newTestInventory(t, "2025-01-05", drug("Aspirin", 0), fresh, bad)

	// Aspirin expired 2024-12-31; Fresh runs to 2025-11-01; Mystery skipped.
	assert.Equal(t, 1, report.ExpiredCount(inv))
}

// =============================================================================
// RANKING
// =============================================================================

func TestBySales_DescendingStable(t *testing.T) {
	// totalSold [50, 10, 30] for names [A, B, C] -> [A(50), C(30), B(10)]
	sorted := report.BySales([]inventory.Drug{drug("A", 50), drug("B", 10), drug("C", 30)})

	require.Len(t, sorted, 3)
	assert.Equal(t, "A", sorted[0].Name)
	assert.Equal(t, "C", sorted[1].Name)
	assert.Equal(t, "B", sorted[2].Name)
}

func TestBySales_TiesKeepInventoryOrder(t *testing.T) {
	sorted := report.BySales([]inventory.Drug{drug("X", 5), drug("Y", 5), drug("Z", 9)})

	assert.Equal(t, "Z", sorted[0].Name)
	assert.Equal(t, "X", sorted[1].Name, "stable sort preserves order of ties")
	assert.Equal(t, "Y", sorted[2].Name)
}

func TestTopAndBottomSold(t *testing.T) {
	drugs := []inventory.Drug{drug("A", 50), drug("B", 10), drug("C", 30)}

	top := report.TopSold(drugs, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "A", top[0].Name)

	bottom := report.BottomSold(drugs, 2)
	require.Len(t, bottom, 2)
	assert.Equal(t, "B", bottom[0].Name, "worst seller is bottom rank 1")
	assert.Equal(t, "C", bottom[1].Name)

	// N larger than the list is clamped, not an error.
	assert.Len(t, report.TopSold(drugs, 10), 3)
	assert.Len(t, report.BottomSold(drugs, 10), 3)
}

func TestTopAndBottomSold_NonPositiveNIsEmpty(t *testing.T) {
	drugs := []inventory.Drug{drug("A", 5)}

	// Negative counts come straight from operator input and must not
	// crash the session.
	assert.Empty(t, report.TopSold(drugs, -1))
	assert.Empty(t, report.BottomSold(drugs, -1))
	assert.Empty(t, report.TopSold(drugs, 0))
	assert.Empty(t, report.BottomSold(drugs, 0))
}

// =============================================================================
// SUMMARY AND TREND
// =============================================================================

func TestSummary(t *testing.T) {
	priced := drug("Aspirin", 20)
	priced.Price = decimal.RequireFromString("3.50")
	unpriced := drug("Gauze", 4)

	inv := newTestInventory(t, "2024-12-20", priced, unpriced)

	s := report.Summary(inv)
	assert.Equal(t, 2, s.DrugCount)
	assert.Equal(t, 24, s.TotalSold)
	assert.Equal(t, 20, s.TotalStock)
	assert.True(t, s.Revenue.Equal(decimal.RequireFromString("70")),
		"unpriced drugs excluded from revenue")
}

func TestTrend_ResolvesThroughInventory(t *testing.T) {
	inv := newTestInventory(t, "2024-12-20", drug("Aspirin", 0))
	log := sales.NewLogFrom(nil, []sales.Transaction{
		{DrugName: "Aspirin", Quantity: 10, Timestamp: "2024-01-05T10:00:00", Type: sales.TypeSale},
		{DrugName: "Deleted", Quantity: 2, Timestamp: "2024-01-06T10:00:00", Type: sales.TypeSale},
	})

	trend := report.Trend(log, inv)
	assert.Equal(t, 10, trend["Pain"]["2024-01"])
	assert.Equal(t, 2, trend[sales.UnknownCategory]["2024-01"])
}
