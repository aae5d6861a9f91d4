package forecast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/crimecast/crimecast/internal/analytics"
)

// Common test data and helpers for all forecast tests

// scenarioRows is the eight-year series used by the end-to-end tests
var scenarioRows = []analytics.Row{
	{Period: 2010, Value: 120},
	{Period: 2011, Value: 135},
	{Period: 2012, Value: 150},
	{Period: 2013, Value: 140},
	{Period: 2014, Value: 160},
	{Period: 2015, Value: 170},
	{Period: 2016, Value: 165},
	{Period: 2017, Value: 180},
}

func mustSeries(t *testing.T, rows []analytics.Row) *analytics.TimeSeries {
	t.Helper()
	ts, err := analytics.BuildSeries(rows)
	if err != nil {
		t.Fatalf("BuildSeries failed: %v", err)
	}
	return ts
}

// seriesFromValues builds a yearly series starting at startYear
func seriesFromValues(t *testing.T, startYear int, values []float64) *analytics.TimeSeries {
	t.Helper()
	rows := make([]analytics.Row, len(values))
	for i, v := range values {
		rows[i] = analytics.Row{Period: startYear + i, Value: v}
	}
	return mustSeries(t, rows)
}

func constantValues(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

// simulateSeasonal generates n observations of a multiplicative seasonal
// process (1-B)(1-B^12) y_t = (1 + 0.4B)(1 - 0.5B^12) e_t around level.
func simulateSeasonal(n int, level float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	const s = 12

	shocks := make([]float64, n)
	for i := range shocks {
		shocks[i] = rng.NormFloat64() * 4
	}

	y := make([]float64, n)
	for t := 0; t < n; t++ {
		if t <= s {
			y[t] = level + 20*math.Sin(2*math.Pi*float64(t%s)/s) + shocks[t]
			continue
		}
		w := shocks[t] + 0.4*shocks[t-1] - 0.5*shocks[t-s] - 0.2*shocks[t-s-1]
		y[t] = w + y[t-1] + y[t-s] - y[t-s-1]
	}
	return y
}

// simulateAR1 generates a noisy AR(1) series around level
func simulateAR1(n int, level, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	y := make([]float64, n)
	prev := 0.0
	for t := range y {
		prev = phi*prev + rng.NormFloat64()*10
		y[t] = level + prev
	}
	return y
}

func assertFinite(t *testing.T, values []float64) {
	t.Helper()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Value %d is not finite: %v", i, v)
		}
	}
}
