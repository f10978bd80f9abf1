package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("payment_mode", "Cash"),
		attribute.String("customer_name", "Ravi"),
		attribute.String("invoice_type", "B2C"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("payment_mode"))
	assert.Contains(t, keys, attribute.Key("invoice_type"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(context.Background(), "B2C", "Cash", 10)
		m.RecordInvoiceEdited(context.Background())
		m.RecordInvoiceDeleted(context.Background())
		m.RecordNumberRetry(context.Background(), "duplicate_key")
	})
}

func TestNew_WithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "finalerp-test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(context.Background(), "B2B", "Online", 236)
	})
}
