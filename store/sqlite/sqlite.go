/*
Package sqlite implements the Store over an embedded SQLite database.

PURPOSE:
  Mirrors the three record sets of the file backend as tables:

    drugs  - name is the primary key, one row per drug
    users  - username is the primary key
    sales  - append-only log with an autoincrementing id; LoadSales
             replays in id order

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE is ever issued against the sales table.

SAVE SEMANTICS:
  SaveDrugs/SaveUsers rewrite the whole table (DELETE + INSERT) inside
  a single SQL transaction, so a refused write rolls back to the
  previous record set rather than leaving half of one.

MIGRATION:
  Schema is created on Init. Databases from before the type/price
  columns are upgraded in place with ALTER TABLE; the added columns
  come back NULL for old rows and the reader infers a type label from
  the quantity sign.

USAGE:
  st := sqlite.New("./data/pharmacy.db")
  if err := st.Init(); err != nil { ... } // unrecoverable, abort
  defer st.Close()
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pharmacy-pos/auth"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

// Store implements the storage contract using SQLite.
type Store struct {
	path string
	db   *sql.DB
}

// New creates a store for the given database path. Use ":memory:" for
// an in-memory database. Nothing is opened until Init.
func New(dbPath string) *Store { return &Store{path: dbPath} }

// Init opens the database, creates the schema, upgrades legacy tables,
// and seeds the default admin when the user table is empty.
func (s *Store) Init() error {
	if dir := filepath.Dir(s.path); s.path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", s.path+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("open database %s: %w", s.path, err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("migrate database: %w", err)
	}
	return s.seedDefaultAdmin()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drugs (
		name TEXT PRIMARY KEY,
		category TEXT,
		manufacturer TEXT,
		specification TEXT,
		production_date TEXT,
		stock INTEGER,
		total_sold INTEGER,
		shelf_life_days INTEGER,
		near_expiry_days INTEGER,
		price TEXT
	);

	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT,
		role TEXT
	);

	-- Append-only sales log; id order is replay order.
	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_id TEXT,
		drug_name TEXT,
		quantity INTEGER,
		timestamp TEXT,
		operator TEXT,
		type TEXT,
		price TEXT
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Upgrade databases created before these columns existed. SQLite
	// has no ADD COLUMN IF NOT EXISTS, so a duplicate-column error is
	// the expected steady state.
	for _, stmt := range []string{
		`ALTER TABLE drugs ADD COLUMN price TEXT`,
		`ALTER TABLE sales ADD COLUMN tx_id TEXT`,
		`ALTER TABLE sales ADD COLUMN type TEXT`,
		`ALTER TABLE sales ADD COLUMN price TEXT`,
	} {
		if _, err := s.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}
	return nil
}

func (s *Store) seedDefaultAdmin() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	admin := auth.DefaultAdmin()
	_, err := s.db.Exec("INSERT INTO users(username, password, role) VALUES(?,?,?)",
		admin.Username, admin.Password, string(admin.Role))
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}
	logrus.WithField("path", s.path).Info("seeded default admin account")
	return nil
}

// =============================================================================
// DRUGS
// =============================================================================

func (s *Store) LoadDrugs() ([]inventory.Drug, error) {
	rows, err := s.db.Query(`
		SELECT name, category, manufacturer, specification, production_date,
		       stock, total_sold, shelf_life_days, near_expiry_days, price
		FROM drugs`)
	if err != nil {
		return nil, fmt.Errorf("load drugs: %w", err)
	}
	defer rows.Close()

	var drugs []inventory.Drug
	for rows.Next() {
		var (
			d                      inventory.Drug
			stock, sold, shelf, th sql.NullInt64
			price                  sql.NullString
		)
		if err := rows.Scan(&d.Name, &d.Category, &d.Manufacturer, &d.Specification,
			&d.ProductionDate, &stock, &sold, &shelf, &th, &price); err != nil {
			return nil, fmt.Errorf("scan drug: %w", err)
		}
		d.Stock = int(stock.Int64)
		d.TotalSold = int(sold.Int64)
		d.ShelfLifeDays = int(shelf.Int64)
		d.NearExpiryThresholdDays = int(th.Int64)
		if price.Valid && price.String != "" {
			if p, err := decimal.NewFromString(price.String); err == nil {
				d.Price = p
			}
		}
		drugs = append(drugs, d)
	}
	return drugs, rows.Err()
}

// SaveDrugs rewrites the drug table inside one transaction.
func (s *Store) SaveDrugs(drugs []inventory.Drug) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save drugs: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM drugs"); err != nil {
		return fmt.Errorf("save drugs: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO drugs(name, category, manufacturer, specification, production_date,
		                  stock, total_sold, shelf_life_days, near_expiry_days, price)
		VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("save drugs: %w", err)
	}
	defer stmt.Close()

	for _, d := range drugs {
		price := ""
		if !d.Price.IsZero() {
			price = d.Price.String()
		}
		if _, err := stmt.Exec(d.Name, d.Category, d.Manufacturer, d.Specification,
			d.ProductionDate, d.Stock, d.TotalSold,
			d.ShelfLifeDays, d.NearExpiryThresholdDays, price); err != nil {
			return fmt.Errorf("save drug %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) LoadUsers() ([]auth.User, error) {
	rows, err := s.db.Query("SELECT username, password, role FROM users")
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		var role string
		if err := rows.Scan(&u.Username, &u.Password, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = auth.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) SaveUsers(users []auth.User) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM users"); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO users(username, password, role) VALUES(?,?,?)")
	if err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.Exec(u.Username, u.Password, string(u.Role)); err != nil {
			return fmt.Errorf("save user %s: %w", u.Username, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// SALES LOG
// =============================================================================

func (s *Store) AppendSale(tx sales.Transaction) error {
	price := ""
	if !tx.PriceAtSale.IsZero() {
		price = tx.PriceAtSale.String()
	}
	_, err := s.db.Exec(`
		INSERT INTO sales(tx_id, drug_name, quantity, timestamp, operator, type, price)
		VALUES(?,?,?,?,?,?,?)`,
		tx.ID, tx.DrugName, tx.Quantity, tx.Timestamp, tx.Operator, string(tx.Type), price)
	if err != nil {
		return fmt.Errorf("append sale: %w", err)
	}
	return nil
}

func (s *Store) LoadSales() ([]sales.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT tx_id, drug_name, quantity, timestamp, operator, type, price
		FROM sales ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	defer rows.Close()

	var txs []sales.Transaction
	for rows.Next() {
		var (
			tx                sales.Transaction
			txID, kind, price sql.NullString
		)
		if err := rows.Scan(&txID, &tx.DrugName, &tx.Quantity, &tx.Timestamp,
			&tx.Operator, &kind, &price); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		tx.ID = txID.String
		if kind.Valid && kind.String != "" {
			tx.Type = sales.Type(kind.String)
		} else {
			// Row predates the type column.
			tx.Type = sales.InferType(tx.Quantity)
		}
		tx.PriceAtSale = decimal.Zero
		if price.Valid && price.String != "" {
			if p, err := decimal.NewFromString(price.String); err == nil {
				tx.PriceAtSale = p
			}
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func isDuplicateColumnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
