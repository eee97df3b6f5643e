package inventory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Checker answers whether a quantity of an item can be fulfilled.
// Only a definite false with a nil error marks the item unavailable.
type Checker interface {
	CheckStock(ctx context.Context, itemID string, quantity decimal.Decimal) (bool, error)
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, itemID string, quantity decimal.Decimal) (bool, error)

// CheckStock implements Checker.
func (f CheckerFunc) CheckStock(ctx context.Context, itemID string, quantity decimal.Decimal) (bool, error) {
	return f(ctx, itemID, quantity)
}

// Static is a read-only stock sheet keyed by item id. Items absent from the sheet are
// treated as available.
type Static map[string]decimal.Decimal

// CheckStock implements Checker.
func (s Static) CheckStock(_ context.Context, itemID string, quantity decimal.Decimal) (bool, error) {
	available, ok := s[itemID]
	if !ok {
		return true, nil
	}
	return quantity.LessThanOrEqual(available), nil
}

// LoadStaticFile reads a YAML mapping of item id to available units.
func LoadStaticFile(path string) (Static, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock sheet %s: %w", path, err)
	}
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode stock sheet: %w", err)
	}
	sheet := make(Static, len(raw))
	for id, units := range raw {
		sheet[id] = decimal.NewFromFloat(units)
	}
	return sheet, nil
}
