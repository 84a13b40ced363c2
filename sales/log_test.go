package sales_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pharmacy-pos/sales"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// failingSink refuses every write, for the no-rollback contract.
type failingSink struct{ calls int }

func (f *failingSink) AppendSale(sales.Transaction) error {
	f.calls++
	return errors.New("disk full")
}

type collectingSink struct{ txs []sales.Transaction }

func (c *collectingSink) AppendSale(tx sales.Transaction) error {
	c.txs = append(c.txs, tx)
	return nil
}

func newTestLog(sink sales.Sink, at string) *sales.Log {
	l := sales.NewLog(sink)
	stamp, err := time.ParseInLocation("2006-01-02T15:04:05", at, time.Local)
	if err != nil {
		panic(err)
	}
	l.Now = func() time.Time { return stamp }
	return l
}

func tx(name string, qty int, ts string, kind sales.Type) sales.Transaction {
	return sales.Transaction{DrugName: name, Quantity: qty, Timestamp: ts, Operator: "admin", Type: kind}
}

// =============================================================================
// RECORD AND APPEND
// =============================================================================

func TestRecord_SaleIsPositive(t *testing.T) {
	sink := &collectingSink{}
	l := newTestLog(sink, "2024-03-10T09:30:00")

	rec, err := l.Record(sales.TypeSale, "Aspirin", 10, "admin", decimal.RequireFromString("3.50"))
	require.NoError(t, err)

	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, sales.TypeSale, rec.Type)
	assert.Equal(t, "2024-03-10T09:30:00", rec.Timestamp)
	assert.Equal(t, "admin", rec.Operator)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.PriceAtSale.Equal(decimal.RequireFromString("3.50")))

	require.Len(t, sink.txs, 1, "exactly one record persisted")
	assert.Equal(t, rec, sink.txs[0])
}

func TestRecord_ReturnAndWastageAreNegative(t *testing.T) {
	l := newTestLog(nil, "2024-03-10T09:30:00")

	ret, err := l.Record(sales.TypeReturn, "Aspirin", 4, "clerk1", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, -4, ret.Quantity)

	was, err := l.Record(sales.TypeWastage, "Aspirin", 2, "clerk1", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, -2, was.Quantity)
}

func TestAppend_PersistenceFailureDoesNotRollBack(t *testing.T) {
	// GIVEN: a sink that refuses every write
	// WHEN: recording a sale
	// THEN: the error is surfaced, but the in-memory log keeps the event
	sink := &failingSink{}
	l := newTestLog(sink, "2024-03-10T09:30:00")

	_, err := l.Record(sales.TypeSale, "Aspirin", 10, "admin", decimal.Zero)

	assert.ErrorIs(t, err, sales.ErrPersistence)
	assert.Equal(t, 1, l.Len(), "in-memory append stands")
	assert.Equal(t, 1, sink.calls)
}

func TestAll_InsertionOrder(t *testing.T) {
	l := sales.NewLogFrom(nil, []sales.Transaction{
		tx("A", 1, "2024-01-05T10:00:00", sales.TypeSale),
		tx("B", 2, "2024-01-04T10:00:00", sales.TypeSale), // earlier stamp, later insert
	})

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].DrugName, "insertion order, not timestamp order")
	assert.Equal(t, "B", all[1].DrugName)
}

func TestInferType(t *testing.T) {
	assert.Equal(t, sales.TypeSale, sales.InferType(5))
	assert.Equal(t, sales.TypeSale, sales.InferType(0))
	assert.Equal(t, sales.TypeReturn, sales.InferType(-5))
}

// =============================================================================
// MONTHLY TREND
// =============================================================================

func TestMonthlyByCategory_NetPerBucket(t *testing.T) {
	// GIVEN: sales and a return across two months and two categories
	l := sales.NewLogFrom(nil, []sales.Transaction{
		tx("Aspirin", 10, "2024-01-05T10:00:00", sales.TypeSale),
		tx("Aspirin", 5, "2024-01-20T10:00:00", sales.TypeSale),
		tx("Aspirin", -3, "2024-01-25T10:00:00", sales.TypeReturn),
		tx("Aspirin", 7, "2024-02-02T10:00:00", sales.TypeSale),
		tx("Vitamin C", 4, "2024-01-15T10:00:00", sales.TypeSale),
	})
	cats := map[string]string{"Aspirin": "Pain", "Vitamin C": "Supplement"}

	trend := l.MonthlyByCategory(cats)

	assert.Equal(t, 12, trend["Pain"]["2024-01"], "10+5-3")
	assert.Equal(t, 7, trend["Pain"]["2024-02"])
	assert.Equal(t, 4, trend["Supplement"]["2024-01"])
}

func TestMonthlyByCategory_WastageExcludedByDefault(t *testing.T) {
	l := sales.NewLogFrom(nil, []sales.Transaction{
		tx("Aspirin", 10, "2024-01-05T10:00:00", sales.TypeSale),
		tx("Aspirin", -6, "2024-01-06T10:00:00", sales.TypeWastage),
	})
	cats := map[string]string{"Aspirin": "Pain"}

	trend := l.MonthlyByCategory(cats)
	assert.Equal(t, 10, trend["Pain"]["2024-01"], "wastage must not dent the trend")

	l.IncludeWastage = true
	trend = l.MonthlyByCategory(cats)
	assert.Equal(t, 4, trend["Pain"]["2024-01"], "toggle folds wastage back in")
}

func TestMonthlyByCategory_DeletedDrugIsUnknown(t *testing.T) {
	l := sales.NewLogFrom(nil, []sales.Transaction{
		tx("Ghost", 3, "2024-01-05T10:00:00", sales.TypeSale),
	})

	trend := l.MonthlyByCategory(map[string]string{})
	assert.Equal(t, 3, trend[sales.UnknownCategory]["2024-01"])
}

func TestMonthlyByCategory_LegacyRowsInferredFromSign(t *testing.T) {
	// Rows loaded from a pre-type-column store have Type == "".
	l := sales.NewLogFrom(nil, []sales.Transaction{
		{DrugName: "Aspirin", Quantity: 10, Timestamp: "2024-01-05T10:00:00"},
		{DrugName: "Aspirin", Quantity: -2, Timestamp: "2024-01-06T10:00:00"},
	})

	trend := l.MonthlyByCategory(map[string]string{"Aspirin": "Pain"})
	assert.Equal(t, 8, trend["Pain"]["2024-01"])
}

func TestMonthlyByCategory_ShortTimestampSkipped(t *testing.T) {
	l := sales.NewLogFrom(nil, []sales.Transaction{
		{DrugName: "Aspirin", Quantity: 10, Timestamp: "bad", Type: sales.TypeSale},
	})

	trend := l.MonthlyByCategory(map[string]string{"Aspirin": "Pain"})
	assert.Empty(t, trend)
}
