package order

import "github.com/shopspring/decimal"

// Item is a single order line. Quantity may be fractional for goods sold by weight or volume.
type Item struct {
	ID       string          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Valid reports whether the line contributes to the subtotal.
func (it *Item) Valid() bool {
	return it != nil && it.Price.IsPositive() && it.Quantity.IsPositive()
}

// Order is the ordered list of lines being priced or validated.
// A nil Items slice means the items were not provided; an empty one means no items.
type Order struct {
	Items []*Item `json:"items"`
}

// User describes the buyer. Type is the loyalty tier and State the tax jurisdiction.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Type    string `json:"type"`
	State   string `json:"state"`
}

// Payment carries the payment method and the amount declared by the caller.
type Payment struct {
	Method string              `json:"method"`
	Amount decimal.NullDecimal `json:"amount"`
}

// Shipping selects the delivery option.
type Shipping struct {
	Type string `json:"type"`
}

// Promo carries an optional promotional code.
type Promo struct {
	Code string `json:"code"`
}

// Report lists every validation problem found in a request.
type Report struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
