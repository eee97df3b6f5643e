package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-engine/internal/order"
	"github.com/noah-isme/pricing-engine/internal/rates"
)

// Money is a monetary amount kept at full precision until Round.
type Money = decimal.Decimal

// Subtotal sums price*quantity over the lines with positive price and quantity.
// Other lines are skipped silently; flagging them is the validator's job.
func Subtotal(o *order.Order) Money {
	subtotal := decimal.Zero
	if o == nil {
		return subtotal
	}
	for _, it := range o.Items {
		if !it.Valid() {
			continue
		}
		subtotal = subtotal.Add(it.Price.Mul(it.Quantity))
	}
	return subtotal
}

// Discount adds the tier discount and the promo discount, both taken on the subtotal.
// The result is not clamped and may exceed the subtotal when rates are configured that way.
func Discount(t *rates.Tables, subtotal Money, u *order.User, p *order.Promo) Money {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	userRate := decimal.Zero
	if u != nil && u.Type != "" {
		userRate = t.TierRate(u.Type)
	}
	total := subtotal.Mul(userRate)
	if p != nil && p.Code != "" {
		if promoRate := t.PromoRate(p.Code); promoRate.IsPositive() {
			total = total.Add(subtotal.Mul(promoRate))
		}
	}
	return total
}

// ShippingCost returns the flat cost of the shipping type. A FREESHIP promo zeroes it first.
func ShippingCost(t *rates.Tables, s *order.Shipping, p *order.Promo) Money {
	if p != nil && p.Code != "" && t.IsFreeShipping(p.Code) {
		return decimal.Zero
	}
	if s != nil && s.Type != "" {
		return t.ShippingCost(s.Type)
	}
	return decimal.Zero
}

// Tax applies the user's state rate to base. Without a state no tax is computed at all.
func Tax(t *rates.Tables, base Money, u *order.User) Money {
	if !base.IsPositive() || u == nil || u.State == "" {
		return decimal.Zero
	}
	rate, _ := t.TaxRate(u.State)
	return base.Mul(rate)
}

// PaymentFee applies the processing rate of the payment method to base.
func PaymentFee(t *rates.Tables, base Money, p *order.Payment) Money {
	if !base.IsPositive() || p == nil || p.Method == "" {
		return decimal.Zero
	}
	return base.Mul(t.PaymentFeeRate(p.Method))
}

// Round rounds to cents, half away from zero.
func Round(m Money) Money {
	return m.Round(2)
}
