package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveFit("arima", "ok", 20*time.Millisecond)
	m.ObserveFit("sarima", "InsufficientData", time.Millisecond)
	m.ObserveRequest("200")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObservePublish(nil)
	m.ObservePublish(errors.New("down"))
	m.SetDatasetRecords(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FamilyRuns.WithLabelValues("arima", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FamilyRuns.WithLabelValues("sarima", "InsufficientData")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DatasetRecords))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FitDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFit("arima", "ok", time.Second)
		m.ObserveRequest("200")
		m.ObserveCache(true)
		m.ObservePublish(nil)
		m.SetDatasetRecords(1)
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("422")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `crimecast_forecast_requests_total{code="422"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
