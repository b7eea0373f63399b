package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCalculation(t *testing.T) {
	m := New("test")
	m.ObserveCalculation("ppn", "SUCCESS", 0.0001, 12_100_000)
	m.ObserveCalculation("ppn", "SUCCESS", 0.0001, 0)
	m.ObserveCalculation("pph21", "FAILURE", 0.0001, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.calculationsTotal.WithLabelValues("ppn", "SUCCESS")))
	assert.Equal(t, float64(12_100_000), testutil.ToFloat64(m.taxAssessed.WithLabelValues("ppn")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calculationsTotal.WithLabelValues("pph21", "FAILURE")))

	m.SetReceiptsStored(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.receiptsStored))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCalculation("ppn", "SUCCESS", 0, 1)
	m.ObserveRequest("GET", "/healthz", "200", 0)
	m.SetReceiptsStored(1)
}
