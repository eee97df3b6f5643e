package rates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNegativeRate is returned when an overlay file carries a rate below zero.
var ErrNegativeRate = errors.New("rate must not be negative")

// overlay mirrors the YAML document accepted by LoadFile.
type overlay struct {
	Tiers       map[string]float64 `yaml:"tiers"`
	Promos      map[string]float64 `yaml:"promos"`
	Shipping    map[string]float64 `yaml:"shipping"`
	Taxes       map[string]float64 `yaml:"taxes"`
	PaymentFees map[string]float64 `yaml:"payment_fees"`
}

// LoadFile reads a YAML overlay and merges it on top of Default.
// An empty path yields the defaults unchanged.
func LoadFile(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate tables %s: %w", path, err)
	}
	return Parse(data)
}

// Parse merges a YAML overlay document on top of Default.
func Parse(data []byte) (*Tables, error) {
	var doc overlay
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rate tables: %w", err)
	}
	t := Default().clone()
	sections := []struct {
		name string
		src  map[string]float64
		dst  map[string]Rate
	}{
		{"tiers", doc.Tiers, t.tiers},
		{"promos", doc.Promos, t.promos},
		{"shipping", doc.Shipping, t.shipping},
		{"taxes", doc.Taxes, t.taxes},
		{"payment_fees", doc.PaymentFees, t.paymentFees},
	}
	for _, s := range sections {
		if err := merge(s.dst, s.src); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return t, nil
}

func merge(dst map[string]Rate, src map[string]float64) error {
	for key, value := range src {
		if value < 0 {
			return fmt.Errorf("%s: %w", key, ErrNegativeRate)
		}
		dst[Normalize(key)] = decimal.NewFromFloat(value)
	}
	return nil
}
