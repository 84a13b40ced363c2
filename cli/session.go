/*
Package cli is the interactive counter surface.

PURPOSE:
  A numbered-menu loop over the inventory ledger, the sales log, and
  the reporting helpers. Everything the session needs is threaded in
  explicitly; there are no package-level globals.

ERROR POLICY:
  Operator mistakes (unknown drug, oversell, expired stock, bad input)
  print a one-line message and return to the menu. Only storage
  initialization failures abort a session, and those happen before the
  session starts.
*/
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pharmacy-pos/auth"
	"github.com/warp/pharmacy-pos/config"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/pos"
	"github.com/warp/pharmacy-pos/report"
	"github.com/warp/pharmacy-pos/sales"
	"github.com/warp/pharmacy-pos/store"
)

const loginAttempts = 3

// Session holds everything one logged-in operator works with.
type Session struct {
	User  auth.User
	Users []auth.User
	Inv   *inventory.Inventory
	Log   *sales.Log
	Store store.Store
	Cfg   config.Config

	in  *bufio.Scanner
	out io.Writer
}

func NewSession(user auth.User, users []auth.User, inv *inventory.Inventory,
	log *sales.Log, st store.Store, cfg config.Config, in io.Reader, out io.Writer) *Session {
	return &Session{
		User: user, Users: users, Inv: inv, Log: log, Store: st, Cfg: cfg,
		in: bufio.NewScanner(in), out: out,
	}
}

// Login prompts for credentials, allowing three attempts before giving up.
func Login(users []auth.User, in io.Reader, out io.Writer) (auth.User, bool) {
	sc := bufio.NewScanner(in)
	for i := 0; i < loginAttempts; i++ {
		fmt.Fprint(out, "username: ")
		if !sc.Scan() {
			return auth.User{}, false
		}
		username := strings.TrimSpace(sc.Text())
		fmt.Fprint(out, "password: ")
		if !sc.Scan() {
			return auth.User{}, false
		}
		password := strings.TrimSpace(sc.Text())

		if u, ok := auth.Authenticate(users, username, password); ok {
			fmt.Fprintf(out, "welcome, %s (%s)\n", u.Username, u.Role)
			return u, true
		}
		fmt.Fprintf(out, "invalid credentials (%d attempts left)\n", loginAttempts-i-1)
	}
	return auth.User{}, false
}

// =============================================================================
// MAIN LOOP
// =============================================================================

// Run drives the menu until the operator exits. Exit offers to save.
func (s *Session) Run() {
	for {
		fmt.Fprint(s.out, "\n== pharmacy ==\n"+
			" 1) drugs\n 2) inventory\n 3) sales\n 4) stats\n 5) system\n 0) exit\n> ")
		switch s.readLine() {
		case "1":
			s.drugsMenu()
		case "2":
			s.inventoryMenu()
		case "3":
			s.salesMenu()
		case "4":
			s.statsMenu()
		case "5":
			s.systemMenu()
		case "0":
			if s.confirm("save before exit? [Y/n] ") {
				s.saveAll()
			}
			fmt.Fprintln(s.out, "bye")
			return
		default:
			fmt.Fprintln(s.out, "unknown choice")
		}
	}
}

// =============================================================================
// DRUGS
// =============================================================================

func (s *Session) drugsMenu() {
	fmt.Fprint(s.out, "-- drugs --\n"+
		" 1) add\n 2) query by name\n 3) query by category\n 4) show all\n"+
		" 5) modify (admin)\n 6) delete (admin)\n 0) back\n> ")
	switch s.readLine() {
	case "1":
		s.addDrug()
	case "2":
		s.queryByName()
	case "3":
		s.queryByCategory()
	case "4":
		s.printDrugs(s.Inv.All())
	case "5":
		if !s.requireAdmin() {
			return
		}
		s.modifyDrug()
	case "6":
		if !s.requireAdmin() {
			return
		}
		s.deleteDrug()
	case "0":
	default:
		fmt.Fprintln(s.out, "unknown choice")
	}
}

func (s *Session) addDrug() {
	d := inventory.Drug{
		Name:           s.prompt("name: "),
		Category:       s.prompt("category: "),
		Manufacturer:   s.prompt("manufacturer: "),
		Specification:  s.prompt("specification: "),
		ProductionDate: s.prompt("production date (YYYY-MM-DD): "),
	}
	if d.Name == "" {
		fmt.Fprintln(s.out, "name is required")
		return
	}
	stock, ok := s.promptInt("initial stock: ")
	if !ok {
		return
	}
	d.Stock = stock
	d.ShelfLifeDays = s.Cfg.ShelfLifeFor(d.Category)
	d.NearExpiryThresholdDays = s.Cfg.NearExpiryThresholdDays
	if raw := s.prompt("unit price (blank for none): "); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Fprintln(s.out, "bad price, drug not added")
			return
		}
		d.Price = p
	}
	s.Inv.Add(d)
	fmt.Fprintf(s.out, "added %s (shelf life %d days)\n", d.Name, d.ShelfLifeDays)
}

func (s *Session) queryByName() {
	hits := s.Inv.FindByNamePrefix(s.prompt("name contains: "))
	s.printDrugs(hits)
}

func (s *Session) queryByCategory() {
	hits := s.Inv.FindByCategory(s.prompt("category: "))
	s.printDrugs(hits)
}

func (s *Session) modifyDrug() {
	name := s.prompt("drug to modify: ")
	if _, ok := s.Inv.Get(name); !ok {
		fmt.Fprintln(s.out, "no such drug")
		return
	}
	// Blank answers keep the current value.
	u := inventory.Update{}
	if v := s.prompt("new name (blank keeps): "); v != "" {
		u.Name = &v
	}
	if v := s.prompt("new category (blank keeps): "); v != "" {
		u.Category = &v
	}
	if v := s.prompt("new manufacturer (blank keeps): "); v != "" {
		u.Manufacturer = &v
	}
	if v := s.prompt("new specification (blank keeps): "); v != "" {
		u.Specification = &v
	}
	if v := s.prompt("new production date (blank keeps): "); v != "" {
		u.ProductionDate = &v
	}
	if v := s.prompt("new stock (blank keeps): "); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fmt.Fprintln(s.out, "bad stock value, nothing changed")
			return
		}
		u.Stock = &n
	}
	if v := s.prompt("new price (blank keeps): "); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			fmt.Fprintln(s.out, "bad price, nothing changed")
			return
		}
		u.Price = &p
	}
	if s.Inv.ModifyByName(name, u) {
		fmt.Fprintln(s.out, "modified")
	} else {
		fmt.Fprintln(s.out, "no such drug")
	}
}

func (s *Session) deleteDrug() {
	name := s.prompt("drug to delete: ")
	if n := s.Inv.DeleteByName(name); n > 0 {
		fmt.Fprintf(s.out, "deleted %d record(s)\n", n)
	} else {
		fmt.Fprintln(s.out, "no such drug")
	}
}

// =============================================================================
// INVENTORY
// =============================================================================

func (s *Session) inventoryMenu() {
	fmt.Fprint(s.out, "-- inventory --\n"+
		" 1) near-expiry list\n 2) expired count\n 0) back\n> ")
	switch s.readLine() {
	case "1":
		items := report.NearExpiry(s.Inv)
		if len(items) == 0 {
			fmt.Fprintln(s.out, "nothing near expiry")
			return
		}
		for _, it := range items {
			label := fmt.Sprintf("%d days left", it.Remain)
			if it.Remain < 0 {
				label = fmt.Sprintf("EXPIRED %d days ago", -it.Remain)
			}
			fmt.Fprintf(s.out, "%-20s %-12s %s\n", it.Drug.Name, it.Drug.Category, label)
		}
	case "2":
		fmt.Fprintf(s.out, "expired drugs: %d\n", report.ExpiredCount(s.Inv))
	case "0":
	default:
		fmt.Fprintln(s.out, "unknown choice")
	}
}

// =============================================================================
// SALES
// =============================================================================

func (s *Session) salesMenu() {
	fmt.Fprint(s.out, "-- sales --\n"+
		" 1) sell\n 2) return\n 3) wastage\n 0) back\n> ")
	choice := s.readLine()
	switch choice {
	case "0":
		return
	case "1", "2", "3":
	default:
		fmt.Fprintln(s.out, "unknown choice")
		return
	}
	name := s.prompt("drug: ")
	qty, ok := s.promptInt("quantity: ")
	if !ok {
		return
	}

	svc := pos.NewService(s.Inv, s.Log, s.User.Username)
	var err error
	switch choice {
	case "1":
		_, err = svc.Sell(name, qty)
	case "2":
		_, err = svc.Return(name, qty)
	case "3":
		_, err = svc.Wastage(name, qty)
	}
	if err != nil {
		s.reportError(err)
		return
	}
	fmt.Fprintln(s.out, "done")
}

// =============================================================================
// STATS
// =============================================================================

func (s *Session) statsMenu() {
	fmt.Fprint(s.out, "-- stats --\n"+
		" 1) sales summary\n 2) top/bottom sellers\n 3) monthly category trend\n 0) back\n> ")
	switch s.readLine() {
	case "1":
		sum := report.Summary(s.Inv)
		fmt.Fprintf(s.out, "drugs: %d  total sold: %d  total stock: %d  revenue: %s\n",
			sum.DrugCount, sum.TotalSold, sum.TotalStock, sum.Revenue.StringFixed(2))
	case "2":
		n, ok := s.promptInt("how many: ")
		if !ok {
			return
		}
		if n <= 0 {
			fmt.Fprintln(s.out, "quantity must be positive")
			return
		}
		fmt.Fprintln(s.out, "top sellers:")
		for i, d := range report.TopSold(s.Inv.All(), n) {
			fmt.Fprintf(s.out, " %d. %-20s sold %d\n", i+1, d.Name, d.TotalSold)
		}
		fmt.Fprintln(s.out, "bottom sellers:")
		for i, d := range report.BottomSold(s.Inv.All(), n) {
			fmt.Fprintf(s.out, " %d. %-20s sold %d\n", i+1, d.Name, d.TotalSold)
		}
	case "3":
		trend := report.Trend(s.Log, s.Inv)
		if len(trend) == 0 {
			fmt.Fprintln(s.out, "no sales yet")
			return
		}
		for _, cat := range sortedKeys(trend) {
			fmt.Fprintf(s.out, "%s:\n", cat)
			for _, month := range sortedKeys(trend[cat]) {
				fmt.Fprintf(s.out, "  %-12s %d\n", month, trend[cat][month])
			}
		}
	case "0":
	default:
		fmt.Fprintln(s.out, "unknown choice")
	}
}

// =============================================================================
// SYSTEM
// =============================================================================

func (s *Session) systemMenu() {
	fmt.Fprint(s.out, "-- system --\n"+
		" 1) view sales log\n 2) save\n 3) reload from disk\n 0) back\n> ")
	switch s.readLine() {
	case "1":
		for _, tx := range s.Log.All() {
			fmt.Fprintf(s.out, "%s  %-8s %-20s %+d  by %s\n",
				tx.Timestamp, tx.Type, tx.DrugName, tx.Quantity, tx.Operator)
		}
	case "2":
		s.saveAll()
	case "3":
		s.reload()
	case "0":
	default:
		fmt.Fprintln(s.out, "unknown choice")
	}
}

func (s *Session) saveAll() {
	if err := s.Store.SaveDrugs(s.Inv.All()); err != nil {
		logrus.WithError(err).Error("saving drugs failed")
		fmt.Fprintln(s.out, "could not save drugs, in-memory state kept")
		return
	}
	if err := s.Store.SaveUsers(s.Users); err != nil {
		logrus.WithError(err).Error("saving users failed")
		fmt.Fprintln(s.out, "could not save users, in-memory state kept")
		return
	}
	fmt.Fprintln(s.out, "saved")
}

func (s *Session) reload() {
	drugs, err := s.Store.LoadDrugs()
	if err != nil {
		fmt.Fprintln(s.out, "could not reload drugs, keeping current state")
		return
	}
	txs, err := s.Store.LoadSales()
	if err != nil {
		fmt.Fprintln(s.out, "could not reload sales, keeping current state")
		return
	}
	s.Inv.Replace(drugs)
	fresh := sales.NewLogFrom(s.Store, txs)
	fresh.IncludeWastage = s.Cfg.TrendIncludeWastage
	s.Log = fresh
	fmt.Fprintf(s.out, "reloaded %d drugs, %d transactions\n", len(drugs), len(txs))
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Session) requireAdmin() bool {
	if s.User.IsAdmin() {
		return true
	}
	fmt.Fprintln(s.out, "permission denied: admin only")
	return false
}

func (s *Session) printDrugs(drugs []inventory.Drug) {
	if len(drugs) == 0 {
		fmt.Fprintln(s.out, "no matching drugs")
		return
	}
	for _, d := range drugs {
		price := "-"
		if !d.Price.IsZero() {
			price = d.Price.StringFixed(2)
		}
		fmt.Fprintf(s.out, "%-20s %-12s %-16s prod %s  stock %d  sold %d  price %s\n",
			d.Name, d.Category, d.Manufacturer, d.ProductionDate, d.Stock, d.TotalSold, price)
	}
}

func (s *Session) reportError(err error) {
	var stockErr *inventory.InsufficientStockError
	var expErr *inventory.ExpiredError
	switch {
	case errors.As(err, &stockErr):
		fmt.Fprintf(s.out, "only %d in stock (asked for %d)\n", stockErr.Available, stockErr.Requested)
	case errors.As(err, &expErr):
		fmt.Fprintf(s.out, "%s expired %d days ago, sale refused\n", expErr.Name, expErr.ExpiredDays)
	case errors.Is(err, inventory.ErrNotFound):
		fmt.Fprintln(s.out, "no such drug")
	case errors.Is(err, inventory.ErrInvalidQuantity):
		fmt.Fprintln(s.out, "quantity must be positive")
	case errors.Is(err, inventory.ErrBadProductionDate):
		fmt.Fprintln(s.out, "production date is unreadable, fix the record first")
	case errors.Is(err, sales.ErrPersistence):
		fmt.Fprintln(s.out, "recorded, but writing the sales log to disk failed")
	default:
		fmt.Fprintf(s.out, "operation failed: %v\n", err)
	}
}

func (s *Session) readLine() string {
	if !s.in.Scan() {
		return "0"
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *Session) prompt(label string) string {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

func (s *Session) promptInt(label string) (int, bool) {
	n, err := strconv.Atoi(s.prompt(label))
	if err != nil {
		fmt.Fprintln(s.out, "not a number")
		return 0, false
	}
	return n, true
}

func (s *Session) confirm(label string) bool {
	ans := strings.ToLower(s.prompt(label))
	return ans == "" || ans == "y" || ans == "yes"
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
