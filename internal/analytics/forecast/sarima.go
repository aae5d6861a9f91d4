package forecast

import (
	"context"

	"github.com/crimecast/crimecast/internal/analytics"
)

// SARIMAEstimator fits seasonal SARIMA(p,d,q)x(P,D,Q,s) models
type SARIMAEstimator struct {
	config EstimatorConfig
}

// NewSARIMAEstimator creates a new SARIMA estimator
func NewSARIMAEstimator(config EstimatorConfig) *SARIMAEstimator {
	return &SARIMAEstimator{config: config.withDefaults()}
}

func init() {
	RegisterEstimator(FamilySARIMA, func(config EstimatorConfig) Estimator {
		return NewSARIMAEstimator(config)
	})
}

// Family returns the model family
func (e *SARIMAEstimator) Family() Family {
	return FamilySARIMA
}

// Fit applies d regular and D seasonal differences, then jointly
// estimates the regular and seasonal AR/MA coefficients of the
// multiplicative model.
func (e *SARIMAEstimator) Fit(ctx context.Context, series *analytics.TimeSeries, spec ModelSpec) (*FittedModel, error) {
	if err := checkSpecFamily(spec, FamilySARIMA); err != nil {
		return nil, err
	}

	layout := paramLayout{
		p:      spec.Order.P,
		q:      spec.Order.Q,
		sp:     spec.Seasonal.P,
		sq:     spec.Seasonal.Q,
		period: spec.Seasonal.Period,
	}
	return fitSeries(ctx, series, spec, layout, e.config)
}
