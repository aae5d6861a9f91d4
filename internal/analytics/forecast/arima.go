package forecast

import (
	"context"

	"github.com/crimecast/crimecast/internal/analytics"
)

// ARIMAEstimator fits non-seasonal ARIMA(p,d,q) models
type ARIMAEstimator struct {
	config EstimatorConfig
}

// NewARIMAEstimator creates a new ARIMA estimator
func NewARIMAEstimator(config EstimatorConfig) *ARIMAEstimator {
	return &ARIMAEstimator{config: config.withDefaults()}
}

func init() {
	RegisterEstimator(FamilyARIMA, func(config EstimatorConfig) Estimator {
		return NewARIMAEstimator(config)
	})
}

// Family returns the model family
func (e *ARIMAEstimator) Family() Family {
	return FamilyARIMA
}

// Fit differences the series d times and fits ARMA(p,q) to the result by
// exact maximum likelihood.
func (e *ARIMAEstimator) Fit(ctx context.Context, series *analytics.TimeSeries, spec ModelSpec) (*FittedModel, error) {
	if err := checkSpecFamily(spec, FamilyARIMA); err != nil {
		return nil, err
	}

	layout := paramLayout{
		p: spec.Order.P,
		q: spec.Order.Q,
	}
	return fitSeries(ctx, series, spec, layout, e.config)
}
