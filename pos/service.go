/*
Package pos coordinates inventory mutations with the sales log.

PURPOSE:
  The inventory ledger knows nothing about events, and the sales log
  knows nothing about stock. This package is the seam: each successful
  mutation appends exactly one transaction; a failed mutation appends
  nothing.

PERSISTENCE ASYMMETRY:
  When the mutation succeeds but the log's backing store refuses the
  write, the mutation is NOT rolled back. The error is surfaced so the
  operator knows the on-disk log is behind, and the in-memory state
  stays authoritative until the next explicit save.
*/
package pos

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

// Service executes counter operations on behalf of one operator.
type Service struct {
	Inv      *inventory.Inventory
	Log      *sales.Log
	Operator string
}

func NewService(inv *inventory.Inventory, log *sales.Log, operator string) *Service {
	return &Service{Inv: inv, Log: log, Operator: operator}
}

// Sell decrements stock, bumps the sold counter, and logs a SALE with
// the drug's current unit price snapshotted.
func (s *Service) Sell(name string, qty int) (sales.Transaction, error) {
	d, ok := s.Inv.Get(name)
	if !ok {
		return sales.Transaction{}, inventory.ErrNotFound
	}
	if err := s.Inv.Sell(name, qty); err != nil {
		return sales.Transaction{}, err
	}
	return s.Log.Record(sales.TypeSale, d.Name, qty, s.Operator, d.Price)
}

// Return restocks, rolls the sold counter back, and logs a RETURN with
// negative quantity.
func (s *Service) Return(name string, qty int) (sales.Transaction, error) {
	if err := s.Inv.Return(name, qty); err != nil {
		return sales.Transaction{}, err
	}
	return s.Log.Record(sales.TypeReturn, name, qty, s.Operator, decimal.Zero)
}

// Wastage writes stock off and logs a WASTAGE with negative quantity.
func (s *Service) Wastage(name string, qty int) (sales.Transaction, error) {
	if err := s.Inv.Wastage(name, qty); err != nil {
		return sales.Transaction{}, err
	}
	return s.Log.Record(sales.TypeWastage, name, qty, s.Operator, decimal.Zero)
}
