package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("native", nil)
	m.ObserveFetch("native", nil)
	m.ObserveFetch("token", errors.New("rpc down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("native", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("token", "error")))
}

func TestObserveScan(t *testing.T) {
	m := New()

	m.ObserveScan("primary", 3, 1, time.Second)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.walletsScanned.WithLabelValues("primary")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.lastSuccessTS.WithLabelValues("primary")))

	m.ObserveScan("primary", 3, 0, time.Second)
	assert.Greater(t, testutil.ToFloat64(m.lastSuccessTS.WithLabelValues("primary")), 0.0)
}

func TestScanSkipped(t *testing.T) {
	m := New()

	m.ScanSkipped("secondary")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedTotal.WithLabelValues("secondary")))
}
