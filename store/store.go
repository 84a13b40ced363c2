/*
Package store defines the persistence capability behind the pharmacy.

PURPOSE:
  The session owns authoritative in-memory state; a Store is where that
  state is loaded from at startup and saved back on demand. The same
  contract is implemented over delimited text files, an embedded SQLite
  database, and plain memory, selected by configuration at process
  start.

CONTRACT NOTES:
  - SaveDrugs/SaveUsers are full rewrites of the record set. A failure
    partway through can leave the persisted set partial; callers
    surface the error and the operator retries the save. In-memory
    state is never rolled back.
  - AppendSale is append-only: implementations expose no update or
    delete for the sales log.
  - LoadSales returns records in replay (insertion) order.
*/
package store

import (
	"github.com/warp/pharmacy-pos/auth"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

// Store is the storage backend contract.
type Store interface {
	// Init prepares the backend (creates directories, files, schema,
	// and the default admin account when no users exist). An Init
	// failure is the one unrecoverable error in the system: the
	// session aborts.
	Init() error

	LoadDrugs() ([]inventory.Drug, error)
	SaveDrugs(drugs []inventory.Drug) error

	LoadUsers() ([]auth.User, error)
	SaveUsers(users []auth.User) error

	// AppendSale persists one sales log record. No update, no delete.
	AppendSale(tx sales.Transaction) error
	LoadSales() ([]sales.Transaction, error)

	Close() error
}
