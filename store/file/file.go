/*
Package file implements the Store over delimited text files.

LAYOUT (UTF-8, comma-delimited, one header row each):
  drugs.csv  name,category,manufacturer,specification,production_date,
             stock,total_sold,shelf_life_days,near_expiry_days,price
  users.csv  username,password,role
  sales.csv  drug_name,quantity,timestamp,operator,type,price

BACKWARD COMPATIBILITY:
  Old drug files carry only the first 7 columns; shelf life, threshold,
  and price default to zero/unset. Old sales files lack the type column
  (the label is inferred from the quantity sign) and the price column.
  Rows that are too short or carry unparseable numbers are skipped with
  a warning.

SAVE SEMANTICS:
  SaveDrugs/SaveUsers truncate and rewrite the whole file. A crash
  mid-write can lose records; that risk is accepted at this scale and
  documented rather than hidden.
*/
package file

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pharmacy-pos/auth"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
)

var drugHeader = []string{
	"name", "category", "manufacturer", "specification", "production_date",
	"stock", "total_sold", "shelf_life_days", "near_expiry_days", "price",
}

var userHeader = []string{"username", "password", "role"}

var salesHeader = []string{"drug_name", "quantity", "timestamp", "operator", "type", "price"}

// Store keeps the three record files under one data directory.
type Store struct {
	dir string
}

func New(dataDir string) *Store { return &Store{dir: dataDir} }

func (s *Store) drugsPath() string { return filepath.Join(s.dir, "drugs.csv") }
func (s *Store) usersPath() string { return filepath.Join(s.dir, "users.csv") }
func (s *Store) salesPath() string { return filepath.Join(s.dir, "sales.csv") }

// Init creates the data directory, a user file seeded with the default
// admin when absent, and an empty sales file when absent. The drug
// file is created lazily on first save.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	if _, err := os.Stat(s.usersPath()); os.IsNotExist(err) {
		if err := s.SaveUsers([]auth.User{auth.DefaultAdmin()}); err != nil {
			return err
		}
		logrus.WithField("path", s.usersPath()).Info("seeded default admin account")
	}
	if _, err := os.Stat(s.salesPath()); os.IsNotExist(err) {
		if err := writeAll(s.salesPath(), salesHeader, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }

// =============================================================================
// DRUGS
// =============================================================================

func (s *Store) LoadDrugs() ([]inventory.Drug, error) {
	rows, err := readAll(s.drugsPath())
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("path", s.drugsPath()).Info("no drug file yet, starting empty")
			return nil, nil
		}
		return nil, err
	}

	var drugs []inventory.Drug
	for i, row := range rows {
		if len(row) < 7 {
			logrus.WithFields(logrus.Fields{"path": s.drugsPath(), "row": i + 2}).
				Warn("skipping short drug row")
			continue
		}
		stock, err1 := strconv.Atoi(row[5])
		sold, err2 := strconv.Atoi(row[6])
		if err1 != nil || err2 != nil {
			logrus.WithFields(logrus.Fields{"path": s.drugsPath(), "row": i + 2}).
				Warn("skipping drug row with non-numeric counters")
			continue
		}
		d := inventory.Drug{
			Name:           row[0],
			Category:       row[1],
			Manufacturer:   row[2],
			Specification:  row[3],
			ProductionDate: row[4],
			Stock:          stock,
			TotalSold:      sold,
		}
		// Trailing columns are individually optional; older files stop
		// at any point past the seventh field.
		if len(row) >= 8 {
			d.ShelfLifeDays, _ = strconv.Atoi(row[7])
		}
		if len(row) >= 9 {
			d.NearExpiryThresholdDays, _ = strconv.Atoi(row[8])
		}
		if len(row) >= 10 && row[9] != "" {
			if p, err := decimal.NewFromString(row[9]); err == nil {
				d.Price = p
			}
		}
		drugs = append(drugs, d)
	}
	return drugs, nil
}

func (s *Store) SaveDrugs(drugs []inventory.Drug) error {
	records := make([][]string, 0, len(drugs))
	for _, d := range drugs {
		price := ""
		if !d.Price.IsZero() {
			price = d.Price.String()
		}
		records = append(records, []string{
			d.Name, d.Category, d.Manufacturer, d.Specification, d.ProductionDate,
			strconv.Itoa(d.Stock), strconv.Itoa(d.TotalSold),
			strconv.Itoa(d.ShelfLifeDays), strconv.Itoa(d.NearExpiryThresholdDays),
			price,
		})
	}
	return writeAll(s.drugsPath(), drugHeader, records)
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) LoadUsers() ([]auth.User, error) {
	rows, err := readAll(s.usersPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var users []auth.User
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		users = append(users, auth.User{Username: row[0], Password: row[1], Role: auth.Role(row[2])})
	}
	return users, nil
}

func (s *Store) SaveUsers(users []auth.User) error {
	records := make([][]string, 0, len(users))
	for _, u := range users {
		records = append(records, []string{u.Username, u.Password, string(u.Role)})
	}
	return writeAll(s.usersPath(), userHeader, records)
}

// =============================================================================
// SALES LOG
// =============================================================================

func (s *Store) AppendSale(tx sales.Transaction) error {
	f, err := os.OpenFile(s.salesPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sales file: %w", err)
	}
	defer f.Close()

	price := ""
	if !tx.PriceAtSale.IsZero() {
		price = tx.PriceAtSale.String()
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{
		tx.DrugName, strconv.Itoa(tx.Quantity), tx.Timestamp, tx.Operator, string(tx.Type), price,
	}); err != nil {
		return fmt.Errorf("append sale: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *Store) LoadSales() ([]sales.Transaction, error) {
	rows, err := readAll(s.salesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var txs []sales.Transaction
	for i, row := range rows {
		if len(row) < 4 {
			logrus.WithFields(logrus.Fields{"path": s.salesPath(), "row": i + 2}).
				Warn("skipping short sales row")
			continue
		}
		qty, err := strconv.Atoi(row[1])
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": s.salesPath(), "row": i + 2}).
				Warn("skipping sales row with non-numeric quantity")
			continue
		}
		tx := sales.Transaction{
			DrugName:    row[0],
			Quantity:    qty,
			Timestamp:   row[2],
			Operator:    row[3],
			PriceAtSale: decimal.Zero,
		}
		if len(row) >= 5 && row[4] != "" {
			tx.Type = sales.Type(row[4])
		} else {
			// Legacy file without the type column.
			tx.Type = sales.InferType(qty)
		}
		if len(row) >= 6 && row[5] != "" {
			if p, err := decimal.NewFromString(row[5]); err == nil {
				tx.PriceAtSale = p
			}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// =============================================================================
// CSV HELPERS
// =============================================================================

// readAll returns the data rows of a CSV file, header stripped.
func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // older files carry fewer columns

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// writeAll truncates and rewrites a CSV file: header then records.
func writeAll(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
