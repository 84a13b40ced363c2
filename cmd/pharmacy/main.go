/*
main.go - Application entry point

PURPOSE:
  Starts an interactive pharmacy point-of-sale session: loads config,
  opens the chosen storage backend, replays persisted state, runs the
  login prompt, and hands control to the menu loop.

STARTUP SEQUENCE:
  1. Load .env overrides (if present) and parse flags
  2. Load key=value config file (missing file means defaults)
  3. Open the storage backend and initialize it (schema, default admin)
  4. Load users, drugs, and the sales log from the backend
  5. Login (three attempts), then run the menu loop

COMMAND-LINE FLAGS:
  -backend  Storage backend: file, sqlite, or memory (default: file)
  -data     Data directory for the file backend, or the database path
            for sqlite (default: ./data)
  -config   Path to the key=value config file (default: ./pharmacy.conf)

ENVIRONMENT:
  PHARMACY_BACKEND, PHARMACY_DATA_DIR, PHARMACY_CONFIG override the
  flag defaults. A .env file in the working directory is honored.

EXAMPLES:
  # File-backed store in ./data
  ./pharmacy

  # SQLite store
  ./pharmacy -backend=sqlite -data=./pharmacy.db

  # Throwaway in-memory session
  ./pharmacy -backend=memory
*/
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/pharmacy-pos/cli"
	"github.com/warp/pharmacy-pos/config"
	"github.com/warp/pharmacy-pos/inventory"
	"github.com/warp/pharmacy-pos/sales"
	"github.com/warp/pharmacy-pos/store"
	"github.com/warp/pharmacy-pos/store/file"
	"github.com/warp/pharmacy-pos/store/memory"
	"github.com/warp/pharmacy-pos/store/sqlite"
)

func main() {
	// .env is optional; flags still win over it.
	_ = godotenv.Load()

	backend := flag.String("backend", envOr("PHARMACY_BACKEND", "file"),
		"storage backend: file, sqlite, or memory")
	dataPath := flag.String("data", envOr("PHARMACY_DATA_DIR", "data"),
		"data directory (file backend) or database path (sqlite backend)")
	configPath := flag.String("config", envOr("PHARMACY_CONFIG", "pharmacy.conf"),
		"path to the key=value config file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("could not read config file")
	}

	st, err := openStore(*backend, *dataPath)
	if err != nil {
		logrus.WithError(err).Fatal("unknown storage backend")
	}
	if err := st.Init(); err != nil {
		logrus.WithError(err).Fatal("storage initialization failed")
	}
	defer st.Close()

	users, err := st.LoadUsers()
	if err != nil {
		logrus.WithError(err).Fatal("could not load users")
	}
	drugs, err := st.LoadDrugs()
	if err != nil {
		logrus.WithError(err).Fatal("could not load drugs")
	}
	txs, err := st.LoadSales()
	if err != nil {
		logrus.WithError(err).Fatal("could not load sales log")
	}

	inv := inventory.NewFrom(drugs, inventory.Policy{BlockExpiredSales: cfg.BlockExpiredSales})
	log := sales.NewLogFrom(st, txs)
	log.IncludeWastage = cfg.TrendIncludeWastage

	user, ok := cli.Login(users, os.Stdin, os.Stdout)
	if !ok {
		logrus.Warn("login failed, exiting")
		os.Exit(1)
	}

	session := cli.NewSession(user, users, inv, log, st, cfg, os.Stdin, os.Stdout)
	session.Run()
}

func openStore(backend, dataPath string) (store.Store, error) {
	switch backend {
	case "file":
		return file.New(dataPath), nil
	case "sqlite":
		// A bare directory means the conventional database file inside it.
		if filepath.Ext(dataPath) == "" {
			dataPath = filepath.Join(dataPath, "pharmacy.db")
		}
		return sqlite.New(dataPath), nil
	case "memory":
		return memory.New(), nil
	}
	return nil, &unknownBackendError{backend}
}

type unknownBackendError struct{ name string }

func (e *unknownBackendError) Error() string {
	return "unsupported backend: " + e.name + " (want file, sqlite, or memory)"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
