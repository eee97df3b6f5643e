package order

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pricing-engine/internal/inventory"
	"github.com/noah-isme/pricing-engine/internal/obs"
)

const tracerName = "github.com/noah-isme/pricing-engine/internal/order"

// Request bundles the inputs of a validation.
type Request struct {
	Order    *Order    `json:"order"`
	User     *User     `json:"user"`
	Payment  *Payment  `json:"payment"`
	Shipping *Shipping `json:"shipping"`
	Promo    *Promo    `json:"promo"`
}

// Validator runs Validate with logging, tracing and metrics around it.
// The zero value is usable and validates without a stock checker.
type Validator struct {
	Stock   inventory.Checker
	Logger  zerolog.Logger
	Metrics *obs.PricingMetrics
	Tracer  trace.Tracer
}

// Validate checks req and returns the full report.
func (v *Validator) Validate(ctx context.Context, req Request) Report {
	tracer := v.Tracer
	if tracer == nil {
		tracer = obs.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "order.Validate")
	defer span.End()

	var stock inventory.Checker
	if v.Stock != nil {
		stock = loggingChecker{next: v.Stock, logger: v.Logger}
	}
	report := Validate(ctx, req.Order, req.User, req.Payment, req.Shipping, stock)

	span.SetAttributes(
		attribute.Bool("order.valid", report.IsValid),
		attribute.Int("order.error_count", len(report.Errors)),
	)
	if !report.IsValid {
		span.SetStatus(codes.Error, "order invalid")
	}
	v.Metrics.ObserveValidation(report.IsValid, len(report.Errors))
	v.Logger.Debug().
		Bool("valid", report.IsValid).
		Int("error_count", len(report.Errors)).
		Strs("errors", report.Errors).
		Msg("order validated")
	return report
}

// loggingChecker records stock lookups that fail. A failed lookup never blocks the order.
type loggingChecker struct {
	next   inventory.Checker
	logger zerolog.Logger
}

func (c loggingChecker) CheckStock(ctx context.Context, itemID string, quantity decimal.Decimal) (bool, error) {
	ok, err := c.next.CheckStock(ctx, itemID, quantity)
	if err != nil {
		c.logger.Warn().Err(err).Str("item_id", itemID).Str("quantity", quantity.String()).Msg("stock check failed")
	}
	return ok, err
}
