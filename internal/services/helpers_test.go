package services

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/crimecast/crimecast/internal/analytics"
	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/dataset"
)

// scenarioRecords is an eight-year selection, a thirty-year trending one and
// a seasonal one long enough for both families.
func scenarioRecords() []dataset.Record {
	var records []dataset.Record
	counts := []float64{100, 110, 105, 120, 130, 125, 140, 150}
	for i, c := range counts {
		records = append(records, dataset.Record{
			Jurisdiction: "Delhi", Category: "Theft", Year: 2010 + i, Count: c,
		})
	}

	records = append(records, trendingRecords("Punjab", "Robbery", 1990, 30)...)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 72; i++ {
		v := 200 + 2*float64(i) + 15*math.Sin(2*math.Pi*float64(i)/12) + 5*rng.NormFloat64()
		records = append(records, dataset.Record{
			Jurisdiction: "Assam", Category: "Burglary", Year: 1900 + i, Count: v,
		})
	}

	records = append(records,
		dataset.Record{Jurisdiction: "Goa", Category: "Arson", Year: 2010, Count: 1},
		dataset.Record{Jurisdiction: "Goa", Category: "Arson", Year: 2010, Count: 2},
	)
	return records
}

// trendingRecords is a linear trend plus AR(1) noise, long enough for a
// well-posed ARIMA fit.
func trendingRecords(jurisdiction, category string, start, n int) []dataset.Record {
	rng := rand.New(rand.NewSource(5))
	records := make([]dataset.Record, 0, n)
	noise := 0.0
	for i := 0; i < n; i++ {
		noise = 0.6*noise + 10*rng.NormFloat64()
		records = append(records, dataset.Record{
			Jurisdiction: jurisdiction, Category: category, Year: start + i,
			Count: 400 + 4*float64(i) + noise,
		})
	}
	return records
}

func testStore() *dataset.Store {
	return dataset.NewStore(scenarioRecords(), "test-v1")
}

func testForecastConfig() config.ForecastConfig {
	return config.DefaultConfig().Forecast
}

type countingSource struct {
	SeriesSource
	mu    sync.Mutex
	calls int
}

func (c *countingSource) Filter(jurisdiction, category string) []analytics.Row {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.SeriesSource.Filter(jurisdiction, category)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("cache down")
}

func (failingCache) Close() error { return nil }

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return errors.New("broker down")
}

func (failingPublisher) Close() error { return nil }
