package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels used by the pricing collectors.
const (
	ResultOK           = "ok"
	ResultOrderInvalid = "order_invalid"
	ResultValid        = "valid"
	ResultInvalid      = "invalid"
)

// PricingMetrics groups Prometheus collectors for the pricing engine and order validator.
// A nil *PricingMetrics is valid and records nothing.
type PricingMetrics struct {
	OrdersPriced     *prometheus.CounterVec
	FinalTotal       prometheus.Histogram
	Validations      *prometheus.CounterVec
	ValidationErrors prometheus.Counter
}

// NewPricingMetrics registers and returns the pricing collectors. Collectors already present
// in reg are reused.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		OrdersPriced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_priced_total",
			Help:      "Count of pricing attempts by outcome.",
		}, []string{"result"}),
		FinalTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_final_total",
			Help:      "Distribution of priced order totals.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_validations_total",
			Help:      "Count of order validations by outcome.",
		}, []string{"result"}),
		ValidationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_validation_errors_total",
			Help:      "Total number of validation errors reported.",
		}),
	}

	mustRegisterCollector(reg, m.OrdersPriced, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.OrdersPriced = v
		}
	})
	mustRegisterCollector(reg, m.FinalTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.FinalTotal = v
		}
	})
	mustRegisterCollector(reg, m.Validations, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.Validations = v
		}
	})
	mustRegisterCollector(reg, m.ValidationErrors, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.ValidationErrors = v
		}
	})
	return m
}

// ObservePriced records a pricing outcome. total is only observed for successful quotes.
func (m *PricingMetrics) ObservePriced(result string, total float64) {
	if m == nil {
		return
	}
	m.OrdersPriced.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.FinalTotal.Observe(total)
	}
}

// ObserveValidation records a validation outcome and its error count.
func (m *PricingMetrics) ObserveValidation(valid bool, errorCount int) {
	if m == nil {
		return
	}
	result := ResultInvalid
	if valid {
		result = ResultValid
	}
	m.Validations.WithLabelValues(result).Inc()
	if errorCount > 0 {
		m.ValidationErrors.Add(float64(errorCount))
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pricing metric: %w", err))
	}
}
