package pricing

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pricing-engine/internal/common"
	"github.com/noah-isme/pricing-engine/internal/obs"
	"github.com/noah-isme/pricing-engine/internal/order"
	"github.com/noah-isme/pricing-engine/internal/rates"
)

const tracerName = "github.com/noah-isme/pricing-engine/internal/pricing"

var (
	// ErrOrderMissing is returned when no order is provided.
	ErrOrderMissing = errors.New("order missing")
	// ErrItemsMissing is returned when the order carries no item list.
	ErrItemsMissing = errors.New("order items missing")
	// ErrItemsEmpty is returned when the item list is empty.
	ErrItemsEmpty = errors.New("order has no items")
	// ErrNonPositiveSubtotal is returned when no line contributes a positive amount.
	ErrNonPositiveSubtotal = errors.New("subtotal must be positive")
)

// Request bundles the pricing inputs. Only Order is mandatory.
type Request = order.Request

// Quote aggregates computed pricing components, each rounded to cents.
type Quote struct {
	Subtotal   Money `json:"subtotal"`
	Discount   Money `json:"discount"`
	Tax        Money `json:"tax"`
	Shipping   Money `json:"shipping"`
	PaymentFee Money `json:"paymentFee"`
	FinalTotal Money `json:"finalTotal"`
}

// Engine prices orders against a set of rate tables.
// The zero value prices with the default tables and no instrumentation.
type Engine struct {
	Tables  *rates.Tables
	Logger  zerolog.Logger
	Metrics *obs.PricingMetrics
	Tracer  trace.Tracer
}

// Price computes the quote for req. It fails with an ORDER_INVALID AppError when the order,
// its items or a positive subtotal are missing; no partial quote is returned.
func (e *Engine) Price(ctx context.Context, req Request) (Quote, error) {
	tracer := e.Tracer
	if tracer == nil {
		tracer = obs.Tracer(tracerName)
	}
	_, span := tracer.Start(ctx, "pricing.Price")
	defer span.End()

	tables := e.tables()
	q, err := compute(tables, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.Metrics.ObservePriced(obs.ResultOrderInvalid, 0)
		e.Logger.Debug().Err(err).Msg("order rejected")
		return Quote{}, err
	}

	total := q.FinalTotal.InexactFloat64()
	defaultTax := usesDefaultTax(tables, req.User)
	span.SetAttributes(
		attribute.String("pricing.subtotal", q.Subtotal.StringFixed(2)),
		attribute.String("pricing.final_total", q.FinalTotal.StringFixed(2)),
		attribute.Bool("pricing.tax_default", defaultTax),
	)
	e.Metrics.ObservePriced(obs.ResultOK, total)
	e.Logger.Debug().
		Bool("tax_default", defaultTax).
		Str("subtotal", q.Subtotal.StringFixed(2)).
		Str("discount", q.Discount.StringFixed(2)).
		Str("tax", q.Tax.StringFixed(2)).
		Str("shipping", q.Shipping.StringFixed(2)).
		Str("payment_fee", q.PaymentFee.StringFixed(2)).
		Str("final_total", q.FinalTotal.StringFixed(2)).
		Msg("order priced")
	return q, nil
}

func (e *Engine) tables() *rates.Tables {
	if e.Tables == nil {
		return rates.Default()
	}
	return e.Tables
}

// usesDefaultTax reports whether the user's state is unlisted and taxed at the DEFAULT rate.
func usesDefaultTax(t *rates.Tables, u *order.User) bool {
	if u == nil || u.State == "" {
		return false
	}
	_, listed := t.TaxRate(u.State)
	return !listed
}

func compute(t *rates.Tables, req Request) (Quote, error) {
	o := req.Order
	switch {
	case o == nil:
		return Quote{}, invalid("pedido não informado", ErrOrderMissing, nil)
	case o.Items == nil:
		return Quote{}, invalid("itens do pedido não informados", ErrItemsMissing, nil)
	case len(o.Items) == 0:
		return Quote{}, invalid("pedido sem itens", ErrItemsEmpty, nil)
	}

	subtotal := Subtotal(o)
	if !subtotal.IsPositive() {
		return Quote{}, invalid("subtotal deve ser positivo", ErrNonPositiveSubtotal, map[string]any{
			"items":    len(o.Items),
			"subtotal": subtotal.StringFixed(2),
		})
	}

	discount := Discount(t, subtotal, req.User, req.Promo)
	// base may go negative when discounts exceed the subtotal; only the final total is clamped
	base := subtotal.Sub(discount)
	tax := Tax(t, base, req.User)
	fee := PaymentFee(t, base, req.Payment)
	shipping := ShippingCost(t, req.Shipping, req.Promo)

	final := base.Add(tax).Add(shipping).Add(fee)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Quote{
		Subtotal:   Round(subtotal),
		Discount:   Round(discount),
		Tax:        Round(tax),
		Shipping:   Round(shipping),
		PaymentFee: Round(fee),
		FinalTotal: Round(final),
	}, nil
}

func invalid(message string, err error, details any) error {
	appErr := common.NewAppError(common.CodeOrderInvalid, message, err)
	appErr.Details = details
	return appErr
}
