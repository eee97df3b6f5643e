package pricing

import (
	"context"

	"github.com/noah-isme/pricing-engine/internal/inventory"
	"github.com/noah-isme/pricing-engine/internal/order"
)

// Processor is the entry point used by callers that need both pricing and validation.
type Processor struct {
	Engine    *Engine
	Validator *order.Validator
}

// NewProcessor wires a processor sharing the engine's logger, metrics and tracer.
func NewProcessor(engine *Engine, stock inventory.Checker) *Processor {
	if engine == nil {
		engine = &Engine{}
	}
	return &Processor{
		Engine: engine,
		Validator: &order.Validator{
			Stock:   stock,
			Logger:  engine.Logger,
			Metrics: engine.Metrics,
			Tracer:  engine.Tracer,
		},
	}
}

// Process prices the request.
func (p *Processor) Process(ctx context.Context, req Request) (Quote, error) {
	engine := p.Engine
	if engine == nil {
		engine = &Engine{}
	}
	return engine.Price(ctx, req)
}

// ValidateAndProcess only validates: it returns the report and never prices. The promo is
// ignored and stock, when non-nil, replaces the validator's configured checker.
func (p *Processor) ValidateAndProcess(ctx context.Context, req Request, stock inventory.Checker) order.Report {
	var v order.Validator
	if p.Validator != nil {
		v = *p.Validator
	}
	if stock != nil {
		v.Stock = stock
	}
	req.Promo = nil
	return v.Validate(ctx, req)
}
