/*
Package config loads the pharmacy configuration file.

FORMAT:
  Plain key=value lines, '#' comments and blank lines ignored:

    default_shelf_life_days=730
    near_expiry_threshold_days=30
    shelf_life.Pain=365
    block_expired_sales=true
    trend_include_wastage=false

  A missing file is not an error: every field has a default. Malformed
  values are skipped with a warning, never fatal.
*/
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultShelfLifeDays           = 730
	DefaultNearExpiryThresholdDays = 30

	shelfLifePrefix = "shelf_life."
)

// Config is loaded once at startup and treated as immutable afterward.
type Config struct {
	DefaultShelfLifeDays    int
	NearExpiryThresholdDays int
	ShelfLifeByCategory     map[string]int

	// Behavior toggles for the policies that varied across the
	// system's lineage. Defaults reproduce the final behavior:
	// expired drugs unsellable, wastage outside the trend.
	BlockExpiredSales   bool
	TrendIncludeWastage bool
}

func Default() Config {
	return Config{
		DefaultShelfLifeDays:    DefaultShelfLifeDays,
		NearExpiryThresholdDays: DefaultNearExpiryThresholdDays,
		ShelfLifeByCategory:     map[string]int{},
		BlockExpiredSales:       true,
		TrendIncludeWastage:     false,
	}
}

// Load reads the config file. A missing file returns the defaults and
// no error; a present but unreadable file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("path", path).Info("config file not found, using defaults")
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if err := cfg.apply(key, val); err != nil {
			logrus.WithFields(logrus.Fields{
				"path": path,
				"line": lineNo,
				"key":  key,
			}).Warnf("skipping config entry: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(key, val string) error {
	switch {
	case key == "default_shelf_life_days":
		return setPositiveInt(&c.DefaultShelfLifeDays, val)
	case key == "near_expiry_threshold_days":
		return setPositiveInt(&c.NearExpiryThresholdDays, val)
	case key == "block_expired_sales":
		return setBool(&c.BlockExpiredSales, val)
	case key == "trend_include_wastage":
		return setBool(&c.TrendIncludeWastage, val)
	case strings.HasPrefix(key, shelfLifePrefix):
		category := key[len(shelfLifePrefix):]
		if category == "" {
			return fmt.Errorf("empty category")
		}
		days, err := strconv.Atoi(val)
		if err != nil || days <= 0 {
			return fmt.Errorf("invalid shelf life %q", val)
		}
		c.ShelfLifeByCategory[category] = days
		return nil
	default:
		return fmt.Errorf("unknown key")
	}
}

func setPositiveInt(dst *int, val string) error {
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid value %q", val)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("invalid value %q", val)
	}
	*dst = b
	return nil
}

// ShelfLifeFor resolves the shelf life for a category: the per-category
// override when present, the global default otherwise. Absence is the
// expected common case, not a failure.
func (c Config) ShelfLifeFor(category string) int {
	if days, ok := c.ShelfLifeByCategory[category]; ok {
		return days
	}
	return c.DefaultShelfLifeDays
}
