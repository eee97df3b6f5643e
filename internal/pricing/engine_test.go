package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/pricing-engine/internal/common"
	"github.com/noah-isme/pricing-engine/internal/obs"
	"github.com/noah-isme/pricing-engine/internal/order"
	"github.com/noah-isme/pricing-engine/internal/pricing"
	"github.com/noah-isme/pricing-engine/internal/rates"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type wantQuote struct {
	subtotal, discount, tax, shipping, fee, final string
}

func requireQuote(t *testing.T, want wantQuote, got pricing.Quote) {
	t.Helper()
	require.Equal(t, want.subtotal, got.Subtotal.StringFixed(2), "subtotal")
	require.Equal(t, want.discount, got.Discount.StringFixed(2), "discount")
	require.Equal(t, want.tax, got.Tax.StringFixed(2), "tax")
	require.Equal(t, want.shipping, got.Shipping.StringFixed(2), "shipping")
	require.Equal(t, want.fee, got.PaymentFee.StringFixed(2), "paymentFee")
	require.Equal(t, want.final, got.FinalTotal.StringFixed(2), "finalTotal")
}

func singleItemRequest() pricing.Request {
	return pricing.Request{
		Order:    &order.Order{Items: []*order.Item{{ID: "A", Price: d("100"), Quantity: d("1")}}},
		User:     &order.User{Type: "VIP", State: "CA"},
		Payment:  &order.Payment{Method: "CREDIT_CARD"},
		Shipping: &order.Shipping{Type: "STANDARD"},
		Promo:    &order.Promo{},
	}
}

func baseOrderRequest() pricing.Request {
	return pricing.Request{
		Order: &order.Order{Items: []*order.Item{
			{ID: "A100", Price: d("10"), Quantity: d("2")},
			{ID: "B200", Price: d("5.5"), Quantity: d("4")},
		}},
		User:     &order.User{ID: "user-vip", Email: "vip@test.com", Address: "Rua A", Type: "VIP", State: "TX"},
		Payment:  &order.Payment{Method: "CREDIT_CARD", Amount: decimal.NewNullDecimal(d("100"))},
		Shipping: &order.Shipping{Type: "EXPRESS"},
		Promo:    &order.Promo{Code: "SAVE20"},
	}
}

func TestPriceSimpleOrder(t *testing.T) {
	var engine pricing.Engine
	q, err := engine.Price(context.Background(), singleItemRequest())
	require.NoError(t, err)
	requireQuote(t, wantQuote{"100.00", "15.00", "7.44", "15.00", "2.47", "109.90"}, q)
}

func TestPriceStacksTierAndPromoDiscounts(t *testing.T) {
	var engine pricing.Engine
	q, err := engine.Price(context.Background(), baseOrderRequest())
	require.NoError(t, err)
	requireQuote(t, wantQuote{"42.00", "14.70", "1.71", "25.00", "0.79", "54.80"}, q)
}

func TestPriceFreeShippingOverridesType(t *testing.T) {
	req := singleItemRequest()
	req.Promo = &order.Promo{Code: "FREESHIP"}

	var engine pricing.Engine
	q, err := engine.Price(context.Background(), req)
	require.NoError(t, err)
	requireQuote(t, wantQuote{"100.00", "15.00", "7.44", "0.00", "2.47", "94.90"}, q)
}

func TestPriceFloridaHasNoTax(t *testing.T) {
	req := singleItemRequest()
	req.User.State = "fl"

	var engine pricing.Engine
	q, err := engine.Price(context.Background(), req)
	require.NoError(t, err)
	require.True(t, q.Tax.IsZero())
	requireQuote(t, wantQuote{"100.00", "15.00", "0.00", "15.00", "2.47", "102.47"}, q)
}

func TestPriceWithoutOptionalInputs(t *testing.T) {
	var engine pricing.Engine
	q, err := engine.Price(context.Background(), pricing.Request{
		Order: &order.Order{Items: []*order.Item{{ID: "A", Price: d("19.99"), Quantity: d("3")}}},
	})
	require.NoError(t, err)
	requireQuote(t, wantQuote{"59.97", "0.00", "0.00", "0.00", "0.00", "59.97"}, q)
}

func TestPriceScenarios(t *testing.T) {
	tenOfOne := &order.Order{Items: []*order.Item{{ID: "A", Price: d("10"), Quantity: d("1")}}}
	cases := []struct {
		name string
		req  func() pricing.Request
		want wantQuote
	}{
		{
			name: "vip with free shipping promo",
			req: func() pricing.Request {
				req := baseOrderRequest()
				req.User.State = "CA"
				req.Promo = &order.Promo{Code: "FREESHIP"}
				return req
			},
			want: wantQuote{"42.00", "6.30", "3.12", "0.00", "1.04", "39.86"},
		},
		{
			name: "vip save50 in florida with bank transfer and pickup",
			req: func() pricing.Request {
				return pricing.Request{
					Order:    tenOfOne,
					User:     &order.User{Type: "VIP", State: "FL"},
					Payment:  &order.Payment{Method: "BANK_TRANSFER"},
					Shipping: &order.Shipping{Type: "PICKUP"},
					Promo:    &order.Promo{Code: "SAVE50"},
				}
			},
			want: wantQuote{"10.00", "6.50", "0.00", "0.00", "0.00", "3.50"},
		},
		{
			name: "pickup without user or payment",
			req: func() pricing.Request {
				req := baseOrderRequest()
				req.User = &order.User{}
				req.Payment = &order.Payment{}
				req.Shipping = &order.Shipping{Type: "PICKUP"}
				req.Promo = &order.Promo{}
				return req
			},
			want: wantQuote{"42.00", "0.00", "0.00", "0.00", "0.00", "42.00"},
		},
		{
			name: "fractional quantity",
			req: func() pricing.Request {
				req := singleItemRequest()
				req.Order = &order.Order{Items: []*order.Item{{ID: "A", Price: d("10"), Quantity: d("1.5")}}}
				return req
			},
			want: wantQuote{"15.00", "2.25", "1.12", "15.00", "0.37", "29.24"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var engine pricing.Engine
			q, err := engine.Price(context.Background(), tc.req())
			require.NoError(t, err)
			requireQuote(t, tc.want, q)
		})
	}
}

func TestPriceClampsNegativeTotal(t *testing.T) {
	tables, err := rates.Parse([]byte("tiers:\n  staff: 0.9\n"))
	require.NoError(t, err)
	req := singleItemRequest()
	req.User.Type = "STAFF"
	req.Promo = &order.Promo{Code: "SAVE50"}

	engine := pricing.Engine{Tables: tables}
	q, err := engine.Price(context.Background(), req)
	require.NoError(t, err)
	// base is -40: tax and fee are skipped, shipping still applies, the total is clamped
	requireQuote(t, wantQuote{"100.00", "140.00", "0.00", "15.00", "0.00", "0.00"}, q)
}

func TestPriceRejectsInvalidOrders(t *testing.T) {
	cases := []struct {
		name  string
		order *order.Order
		want  error
	}{
		{"missing order", nil, pricing.ErrOrderMissing},
		{"missing items", &order.Order{}, pricing.ErrItemsMissing},
		{"empty items", &order.Order{Items: []*order.Item{}}, pricing.ErrItemsEmpty},
		{"no valid line", &order.Order{Items: []*order.Item{nil, {ID: "A", Price: d("0"), Quantity: d("2")}}}, pricing.ErrNonPositiveSubtotal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var engine pricing.Engine
			q, err := engine.Price(context.Background(), pricing.Request{Order: tc.order})
			require.ErrorIs(t, err, tc.want)
			require.True(t, common.HasCode(err, common.CodeOrderInvalid))
			require.Equal(t, pricing.Quote{}, q)

			var appErr *common.AppError
			require.True(t, errors.As(err, &appErr))
			require.NotEmpty(t, appErr.Message)
		})
	}
}

func TestPriceNonPositiveSubtotalCarriesDetails(t *testing.T) {
	var engine pricing.Engine
	_, err := engine.Price(context.Background(), pricing.Request{Order: &order.Order{Items: []*order.Item{
		{ID: "A", Price: d("10"), Quantity: d("0")},
		{ID: "B", Price: d("-2"), Quantity: d("1")},
	}}})

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, map[string]any{"items": 2, "subtotal": "0.00"}, appErr.Details)
	require.Equal(t, appErr.Details, common.ErrorBodyFrom(err, "INTERNAL").Details)
}

func TestPriceRecordsSpanAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := obs.NewPricingMetrics("pricing", prometheus.NewRegistry())
	engine := pricing.Engine{Metrics: metrics, Tracer: provider.Tracer("test")}

	_, err := engine.Price(context.Background(), singleItemRequest())
	require.NoError(t, err)
	_, err = engine.Price(context.Background(), pricing.Request{})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "pricing.Price", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OrdersPriced.WithLabelValues(obs.ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OrdersPriced.WithLabelValues(obs.ResultOrderInvalid)))
}

func TestPriceFlagsDefaultTaxState(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	engine := pricing.Engine{Tracer: provider.Tracer("test")}

	listed := singleItemRequest()
	unlisted := singleItemRequest()
	unlisted.User.State = "AK"

	_, err := engine.Price(context.Background(), listed)
	require.NoError(t, err)
	q, err := engine.Price(context.Background(), unlisted)
	require.NoError(t, err)
	// 85 * DEFAULT 0.05
	require.Equal(t, "4.25", q.Tax.StringFixed(2))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Contains(t, spans[0].Attributes(), attribute.Bool("pricing.tax_default", false))
	require.Contains(t, spans[1].Attributes(), attribute.Bool("pricing.tax_default", true))
}
