// Package memory provides an in-memory Store for tests and throwaway
// sessions. Nothing survives the process.
package memory

import (
	"github.com/warp/pharmacy-pos/auth"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

type Store struct {
	drugs []inventory.Drug
	users []auth.User
	txs   []sales.Transaction
}

func New() *Store { return &Store{} }

func (s *Store) Init() error {
	if len(s.users) == 0 {
		s.users = []auth.User{auth.DefaultAdmin()}
	}
	return nil
}

func (s *Store) LoadDrugs() ([]inventory.Drug, error) {
	return append([]inventory.Drug(nil), s.drugs...), nil
}

func (s *Store) SaveDrugs(drugs []inventory.Drug) error {
	s.drugs = append([]inventory.Drug(nil), drugs...)
	return nil
}

func (s *Store) LoadUsers() ([]auth.User, error) {
	return append([]auth.User(nil), s.users...), nil
}

func (s *Store) SaveUsers(users []auth.User) error {
	s.users = append([]auth.User(nil), users...)
	return nil
}

func (s *Store) AppendSale(tx sales.Transaction) error {
	s.txs = append(s.txs, tx)
	return nil
}

func (s *Store) LoadSales() ([]sales.Transaction, error) {
	return append([]sales.Transaction(nil), s.txs...), nil
}

func (s *Store) Close() error { return nil }
