package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FreeShippingCode is the promo code that zeroes shipping instead of granting a discount.
const FreeShippingCode = "FREESHIP"

// DefaultTaxKey names the fallback tax rate applied to unlisted states.
const DefaultTaxKey = "DEFAULT"

// Rate is a multiplier (0.15 for 15%) or, for shipping, a flat cost.
type Rate = decimal.Decimal

// Tables groups the lookup data used by the pricing calculators.
// Keys are stored uppercase; lookups normalise the caller's key the same way.
type Tables struct {
	tiers       map[string]Rate
	promos      map[string]Rate
	shipping    map[string]Rate
	taxes       map[string]Rate
	paymentFees map[string]Rate
}

// Default returns the built-in rate tables.
func Default() *Tables {
	return &Tables{
		tiers: map[string]Rate{
			"VIP":     decimal.RequireFromString("0.15"),
			"GOLD":    decimal.RequireFromString("0.10"),
			"SILVER":  decimal.RequireFromString("0.05"),
			"BRONZE":  decimal.RequireFromString("0.02"),
			"REGULAR": decimal.Zero,
		},
		promos: map[string]Rate{
			"SAVE10": decimal.RequireFromString("0.10"),
			"SAVE20": decimal.RequireFromString("0.20"),
			"SAVE30": decimal.RequireFromString("0.30"),
			"SAVE50": decimal.RequireFromString("0.50"),
			"BOGO":   decimal.RequireFromString("0.50"),
		},
		shipping: map[string]Rate{
			"EXPRESS":  decimal.NewFromInt(25),
			"STANDARD": decimal.NewFromInt(15),
			"ECONOMY":  decimal.NewFromInt(8),
			"PICKUP":   decimal.Zero,
		},
		taxes: map[string]Rate{
			"CA":          decimal.RequireFromString("0.0875"),
			"NY":          decimal.RequireFromString("0.08"),
			"TX":          decimal.RequireFromString("0.0625"),
			"FL":          decimal.Zero,
			DefaultTaxKey: decimal.RequireFromString("0.05"),
		},
		paymentFees: map[string]Rate{
			"CREDIT_CARD":   decimal.RequireFromString("0.029"),
			"DEBIT_CARD":    decimal.RequireFromString("0.015"),
			"PAYPAL":        decimal.RequireFromString("0.034"),
			"BANK_TRANSFER": decimal.Zero,
			"CRYPTO":        decimal.RequireFromString("0.01"),
		},
	}
}

// TierRate returns the discount rate for a user tier, zero when unknown.
func (t *Tables) TierRate(tier string) Rate {
	return lookup(t.tiers, tier)
}

// PromoRate returns the discount rate for a promo code, zero when unknown.
func (t *Tables) PromoRate(code string) Rate {
	return lookup(t.promos, code)
}

// ShippingCost returns the flat cost for a shipping type, zero when unknown.
func (t *Tables) ShippingCost(kind string) Rate {
	return lookup(t.shipping, kind)
}

// TaxRate returns the rate for a state. Unlisted states fall back to DEFAULT and report ok=false.
func (t *Tables) TaxRate(state string) (Rate, bool) {
	if rate, ok := t.taxes[Normalize(state)]; ok {
		return rate, true
	}
	return t.taxes[DefaultTaxKey], false
}

// PaymentFeeRate returns the processing fee rate for a payment method, zero when unknown.
func (t *Tables) PaymentFeeRate(method string) Rate {
	return lookup(t.paymentFees, method)
}

// IsFreeShipping reports whether the promo code overrides shipping.
func (t *Tables) IsFreeShipping(code string) bool {
	return Normalize(code) == FreeShippingCode
}

// Normalize uppercases a lookup key. Surrounding whitespace is significant.
func Normalize(key string) string {
	return strings.ToUpper(key)
}

func lookup(table map[string]Rate, key string) Rate {
	if rate, ok := table[Normalize(key)]; ok {
		return rate
	}
	return decimal.Zero
}

func (t *Tables) clone() *Tables {
	return &Tables{
		tiers:       cloneTable(t.tiers),
		promos:      cloneTable(t.promos),
		shipping:    cloneTable(t.shipping),
		taxes:       cloneTable(t.taxes),
		paymentFees: cloneTable(t.paymentFees),
	}
}

func cloneTable(src map[string]Rate) map[string]Rate {
	dst := make(map[string]Rate, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
