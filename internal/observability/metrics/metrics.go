package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesCreated metric.Int64Counter
	invoicesEdited  metric.Int64Counter
	invoicesDeleted metric.Int64Counter
	numberRetries   metric.Int64Counter
	invoiceAmount   metric.Float64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "finalerp"
	}
	meter := provider.Meter(name)

	invoicesCreated, err := meter.Int64Counter("finalerp_invoices_created_total")
	if err != nil {
		return nil, err
	}
	invoicesEdited, err := meter.Int64Counter("finalerp_invoices_edited_total")
	if err != nil {
		return nil, err
	}
	invoicesDeleted, err := meter.Int64Counter("finalerp_invoices_deleted_total")
	if err != nil {
		return nil, err
	}
	numberRetries, err := meter.Int64Counter("finalerp_invoice_number_retries_total")
	if err != nil {
		return nil, err
	}
	invoiceAmount, err := meter.Float64Counter("finalerp_invoice_grand_total",
		metric.WithUnit("INR"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesCreated: invoicesCreated,
		invoicesEdited:  invoicesEdited,
		invoicesDeleted: invoicesDeleted,
		numberRetries:   numberRetries,
		invoiceAmount:   invoiceAmount,
	}, nil
}

// RecordInvoiceCreated counts a persisted invoice and its grand total.
func (m *Metrics) RecordInvoiceCreated(ctx context.Context, invoiceType, paymentMode string, grandTotal float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("invoice_type", strings.TrimSpace(invoiceType)),
		attribute.String("payment_mode", strings.TrimSpace(paymentMode)),
	)
	m.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.invoiceAmount.Add(ctx, grandTotal, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvoiceEdited(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesEdited.Add(ctx, 1)
}

func (m *Metrics) RecordInvoiceDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesDeleted.Add(ctx, 1)
}

// RecordNumberRetry counts an invoice number collision that triggered a retry.
func (m *Metrics) RecordNumberRetry(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.numberRetries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"invoice_type": {},
	"payment_mode": {},
	"reason":       {},
	"route":        {},
	"method":       {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
