package forecast

import (
	"math"

	"github.com/crimecast/crimecast/internal/analytics"
)

// ForecastPoint represents a single forecast prediction
type ForecastPoint struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// ModelInfo contains metadata about the fitted model
type ModelInfo struct {
	Algorithm     string                 `json:"algorithm"`
	Model         string                 `json:"model"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
	Variance      float64                `json:"variance"`
	LogLikelihood float64                `json:"log_likelihood"`
	Iterations    int                    `json:"iterations"`
	DataPoints    int                    `json:"data_points"` // Number of data points used
}

// ForecastResult contains the forecast predictions and model information
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	ModelInfo   ModelInfo       `json:"model_info"`
}

// Values extracts just the predicted values
func (r *ForecastResult) Values() []float64 {
	values := make([]float64, len(r.Predictions))
	for i, p := range r.Predictions {
		values[i] = p.Value
	}
	return values
}

// Forecast produces horizon point forecasts from a fitted model.
//
// The final filtered state is propagated with zero future shocks and the
// result is integrated back through the seasonal and non-seasonal
// differencing. Periods run from the last observed period + 1 onwards.
func Forecast(model *FittedModel, horizon int) (*ForecastResult, error) {
	family := ""
	if model != nil {
		family = string(model.Spec.Family)
	}
	if horizon <= 0 {
		return nil, analytics.NewError(analytics.KindInvalidHorizon, analytics.StageForecaster, family,
			"horizon must be positive, got %d", horizon)
	}
	if model == nil || model.transition == nil || len(model.original) == 0 {
		return nil, analytics.NewError(analytics.KindInvalidSpec, analytics.StageForecaster, family,
			"model has not been fitted")
	}

	working := project(model.transition, model.finalState, horizon)
	for i := range working {
		working[i] += model.Mean
	}

	values := integrate(model.original, working, model.diffPoly)

	last := model.LastPeriod()
	predictions := make([]ForecastPoint, horizon)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, analytics.NewError(analytics.KindNumericalInstability, analytics.StageForecaster, family,
				"non-finite forecast at step %d", i+1)
		}
		predictions[i] = ForecastPoint{Period: last + i + 1, Value: v}
	}

	return &ForecastResult{
		Predictions: predictions,
		ModelInfo:   model.Info(),
	}, nil
}
