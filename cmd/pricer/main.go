package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pricing-engine/internal/common"
	"github.com/noah-isme/pricing-engine/internal/config"
	"github.com/noah-isme/pricing-engine/internal/inventory"
	"github.com/noah-isme/pricing-engine/internal/obs"
	"github.com/noah-isme/pricing-engine/internal/order"
	"github.com/noah-isme/pricing-engine/internal/pricing"
	"github.com/noah-isme/pricing-engine/internal/rates"
)

const (
	serviceName = "pricer"
	tracerName  = "github.com/noah-isme/pricing-engine/cmd/pricer"

	exitOK      = 0
	exitInvalid = 1
	exitSetup   = 2

	codeInternal = "INTERNAL"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type result struct {
	Quote      *pricing.Quote    `json:"quote"`
	Validation order.Report      `json:"validation"`
	Error      *common.ErrorBody `json:"error,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "path to the JSON request (stdin when empty)")
	ratesFile := fs.String("rates", "", "YAML rate overlay, overrides PRICING_RATES_FILE")
	stockFile := fs.String("stock", "", "YAML stock sheet, overrides INVENTORY_STOCK_FILE")
	if err := fs.Parse(args); err != nil {
		return exitSetup
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return exitSetup
	}
	if *ratesFile != "" {
		cfg.RatesFile = *ratesFile
	}
	if *stockFile != "" {
		cfg.StockFile = *stockFile
	}

	runID := uuid.NewString()
	logger := obs.NewLogger(stderr, cfg.LogFormat, cfg.LogLevel).With().
		Str("service", serviceName).
		Str("env", cfg.AppEnv).
		Str("run_id", runID).
		Logger()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampleRatio,
			Environment:   cfg.AppEnv,
			InstanceID:    runID,
		})
		if err != nil {
			logger.Error().Err(err).Msg("init tracer")
			return exitSetup
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	registry := prometheus.NewRegistry()
	metrics := obs.NewPricingMetrics(cfg.MetricsNamespace, registry)

	tables, err := rates.LoadFile(cfg.RatesFile)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.RatesFile).Msg("load rate tables")
		return exitSetup
	}
	sheet, err := inventory.LoadStaticFile(cfg.StockFile)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.StockFile).Msg("load stock sheet")
		return exitSetup
	}
	var stock inventory.Checker
	if sheet != nil {
		stock = sheet
	}

	req, err := readRequest(*in, stdin)
	if err != nil {
		logger.Error().Err(err).Msg("read request")
		return exitSetup
	}

	ctx, span := obs.Tracer(tracerName).Start(ctx, "pricer.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	processor := pricing.NewProcessor(&pricing.Engine{Tables: tables, Logger: logger, Metrics: metrics}, stock)
	out := result{Validation: processor.ValidateAndProcess(ctx, req, nil)}
	code := exitOK
	quote, err := processor.Process(ctx, req)
	switch {
	case err == nil:
		out.Quote = &quote
	case common.HasCode(err, common.CodeOrderInvalid):
		out.Error = common.ErrorBodyFrom(err, codeInternal)
		code = exitInvalid
		logger.Info().Err(err).Msg("order not priced")
	default:
		out.Error = common.ErrorBodyFrom(err, codeInternal)
		code = exitSetup
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("price order")
	}

	if err := common.JSON(stdout, out); err != nil {
		logger.Error().Err(err).Msg("write result")
		return exitSetup
	}

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, registry); err != nil {
			logger.Warn().Err(err).Str("path", cfg.MetricsTextfile).Msg("write metrics textfile")
		}
	}
	logger.Debug().Int("exit_code", code).Bool("valid", out.Validation.IsValid).Msg("run finished")
	return code
}

func readRequest(path string, stdin io.Reader) (order.Request, error) {
	var req order.Request
	src := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open request %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}
	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
