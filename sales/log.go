/*
Package sales is the append-only transaction log.

PURPOSE:
  Every sale, return, and wastage is recorded here as an immutable
  event. Reports never read cached totals from the log; monthly trends
  are recomputed by replaying the full sequence on each query.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: no update, no delete, once written.
  2. SOFT REFERENCES: events point at drugs by name only. A transaction
     that outlives its drug stays valid and resolves to the "unknown"
     category in trend reports.
  3. NO ROLLBACK: a persistence failure is surfaced to the caller but
     the in-memory append stands. The inventory mutation already
     happened; the operator retries the save explicitly.

SIGN CONVENTION:
  SALE quantities are positive; RETURN and WASTAGE quantities are
  negative. Legacy rows without a type column are labeled from the
  sign alone.
*/
package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/pharmacy-pos/calendar"
)

// ErrPersistence wraps a storage failure during Append. The in-memory
// log is NOT rolled back when this is returned.
var ErrPersistence = errors.New("sales log persistence failed")

// Type labels a transaction.
type Type string

const (
	TypeSale    Type = "SALE"
	TypeReturn  Type = "RETURN"
	TypeWastage Type = "WASTAGE"
)

// InferType labels a legacy record missing the type column from the
// sign of its quantity.
func InferType(quantity int) Type {
	if quantity >= 0 {
		return TypeSale
	}
	return TypeReturn
}

// Transaction is one immutable event.
type Transaction struct {
	ID        string // uuid, assigned at record time; may be empty for legacy rows
	DrugName  string
	Quantity  int    // signed: +sale, -return/-wastage
	Timestamp string // "YYYY-MM-DDTHH:MM:SS", local clock
	Operator  string
	Type      Type

	// PriceAtSale snapshots the unit price when the event was recorded,
	// so later price changes do not rewrite history. Zero for unpriced
	// drugs and non-sale events.
	PriceAtSale decimal.Decimal
}

// UnknownCategory is the trend bucket for drugs that no longer exist.
const UnknownCategory = "unknown"

// Sink receives appended transactions for persistence.
type Sink interface {
	AppendSale(tx Transaction) error
}

// =============================================================================
// LOG
// =============================================================================

// Log is the in-memory event sequence, optionally backed by a Sink.
type Log struct {
	txs  []Transaction
	sink Sink

	// IncludeWastage folds WASTAGE events into the monthly trend.
	// The final policy excludes them; the toggle exists because the
	// system's lineage disagreed.
	IncludeWastage bool

	// Now supplies timestamps for Record. Tests pin it.
	Now func() time.Time
}

// NewLog returns an empty log. sink may be nil for a purely in-memory
// session.
func NewLog(sink Sink) *Log {
	return &Log{sink: sink, Now: time.Now}
}

// NewLogFrom seeds a log with previously persisted transactions in
// replay order. The seed records are not re-persisted.
func NewLogFrom(sink Sink, txs []Transaction) *Log {
	l := NewLog(sink)
	l.txs = append(l.txs, txs...)
	return l
}

// Append adds a transaction to the log and forwards it to the sink.
// The in-memory append always happens; a sink failure comes back
// wrapped in ErrPersistence and the caller decides what to tell the
// operator.
func (l *Log) Append(tx Transaction) error {
	l.txs = append(l.txs, tx)
	if l.sink == nil {
		return nil
	}
	if err := l.sink.AppendSale(tx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Record builds and appends a transaction for the given event. qty is
// the operator-entered positive amount; the sign convention is applied
// here. Returns the recorded transaction alongside any persistence
// error.
func (l *Log) Record(kind Type, drugName string, qty int, operator string, price decimal.Decimal) (Transaction, error) {
	signed := qty
	if kind != TypeSale {
		signed = -qty
	}
	priceAtSale := decimal.Zero
	if kind == TypeSale {
		priceAtSale = price
	}
	tx := Transaction{
		ID:          uuid.NewString(),
		DrugName:    drugName,
		Quantity:    signed,
		Timestamp:   calendar.FormatTimestamp(l.Now()),
		Operator:    operator,
		Type:        kind,
		PriceAtSale: priceAtSale,
	}
	return tx, l.Append(tx)
}

// All returns the full sequence in insertion order.
func (l *Log) All() []Transaction {
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

func (l *Log) Len() int { return len(l.txs) }

// =============================================================================
// TREND AGGREGATION
// =============================================================================

// MonthlyByCategory replays the log into category -> "YYYY-MM" -> net
// quantity. Drug names are resolved through nameToCategory; names that
// no longer resolve land in the "unknown" bucket. WASTAGE events are
// excluded unless IncludeWastage is set. Records with a timestamp too
// short to bucket are skipped.
func (l *Log) MonthlyByCategory(nameToCategory map[string]string) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, tx := range l.txs {
		month := calendar.MonthOf(tx.Timestamp)
		if month == "" {
			continue
		}
		kind := tx.Type
		if kind == "" {
			kind = InferType(tx.Quantity)
		}
		if kind == TypeWastage && !l.IncludeWastage {
			continue
		}
		cat, ok := nameToCategory[tx.DrugName]
		if !ok {
			cat = UnknownCategory
		}
		if out[cat] == nil {
			out[cat] = make(map[string]int)
		}
		out[cat][month] += tx.Quantity
	}
	return out
}
