package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crimecast/crimecast/internal/analytics"
	"github.com/crimecast/crimecast/internal/analytics/forecast"
)

// Family outcome statuses
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// FamilyError is the structured failure of one model family
type FamilyError struct {
	Code    string `json:"code"`
	Stage   string `json:"stage"`
	Family  string `json:"family"`
	Message string `json:"message"`
}

// FamilyForecast is the outcome of one model family. Exactly one of
// Predictions and Error is set.
type FamilyForecast struct {
	Family      string                   `json:"family"`
	Model       string                   `json:"model"`
	Status      string                   `json:"status"`
	Predictions []forecast.ForecastPoint `json:"predictions,omitempty"`
	ModelInfo   *forecast.ModelInfo      `json:"model_info,omitempty"`
	Error       *FamilyError             `json:"error,omitempty"`
	DurationMs  int64                    `json:"duration_ms"`
}

// Failed reports whether the family produced no forecast
func (f FamilyForecast) Failed() bool {
	return f.Error != nil
}

// RunResult holds one outcome per model family in reporting order
type RunResult struct {
	Horizon  int              `json:"horizon"`
	Families []FamilyForecast `json:"families"`
}

// AllFailed reports whether no family produced a forecast
func (r *RunResult) AllFailed() bool {
	for _, f := range r.Families {
		if !f.Failed() {
			return false
		}
	}
	return true
}

// Family returns the outcome of the named family
func (r *RunResult) Family(family forecast.Family) (FamilyForecast, bool) {
	for _, f := range r.Families {
		if f.Family == string(family) {
			return f, true
		}
	}
	return FamilyForecast{}, false
}

// Run fits every configured model family to series and forecasts horizon
// periods ahead. The horizon is validated before any fitting. Family
// failures are reported in the result, never returned as an error.
func (s *ForecastService) Run(ctx context.Context, series *analytics.TimeSeries, horizon int) (*RunResult, error) {
	if horizon <= 0 {
		return nil, analytics.NewError(analytics.KindInvalidHorizon, analytics.StageForecaster, "",
			"horizon must be positive, got %d", horizon)
	}

	result := &RunResult{
		Horizon:  horizon,
		Families: make([]FamilyForecast, len(s.specs)),
	}

	if !s.config.Concurrent {
		for i, spec := range s.specs {
			result.Families[i] = s.runFamily(ctx, series, spec, horizon)
		}
		return result, nil
	}

	var wg sync.WaitGroup
	for i, spec := range s.specs {
		wg.Add(1)
		go func(i int, spec forecast.ModelSpec) {
			defer wg.Done()
			result.Families[i] = s.runFamily(ctx, series, spec, horizon)
		}(i, spec)
	}
	wg.Wait()

	return result, nil
}

// runFamily takes one family through fit and forecast under the per-fit
// timeout. A panic inside the numerics becomes a NumericalInstability
// outcome for that family only.
func (s *ForecastService) runFamily(ctx context.Context, series *analytics.TimeSeries, spec forecast.ModelSpec, horizon int) (out FamilyForecast) {
	family := string(spec.Family)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = failedFamily(spec, analytics.NewError(analytics.KindNumericalInstability, analytics.StageEstimator, family,
				"panic: %v", r))
		}
		out.DurationMs = time.Since(start).Milliseconds()

		outcome := StatusOK
		if out.Error != nil {
			outcome = out.Error.Code
			s.logger.WithContext(ctx).Warn("Model family failed",
				"family", family,
				"code", out.Error.Code,
				"stage", out.Error.Stage,
				"error", out.Error.Message)
		}
		s.metrics.ObserveFit(family, outcome, time.Since(start))
	}()

	fitCtx, cancel := context.WithTimeout(ctx, s.fitTimeout)
	defer cancel()

	model, err := forecast.Fit(fitCtx, series, spec, s.estimator)
	if err != nil {
		return failedFamily(spec, err)
	}

	res, err := forecast.Forecast(model, horizon)
	if err != nil {
		return failedFamily(spec, err)
	}

	info := res.ModelInfo
	return FamilyForecast{
		Family:      family,
		Model:       spec.String(),
		Status:      StatusOK,
		Predictions: res.Predictions,
		ModelInfo:   &info,
	}
}

func failedFamily(spec forecast.ModelSpec, err error) FamilyForecast {
	return FamilyForecast{
		Family: string(spec.Family),
		Model:  spec.String(),
		Status: StatusFailed,
		Error:  toFamilyError(string(spec.Family), err),
	}
}

func toFamilyError(family string, err error) *FamilyError {
	ae, ok := analytics.AsError(err)
	if !ok {
		return &FamilyError{
			Code:    string(analytics.KindNumericalInstability),
			Stage:   string(analytics.StageEstimator),
			Family:  family,
			Message: err.Error(),
		}
	}

	fe := &FamilyError{
		Code:    string(ae.Kind),
		Stage:   string(ae.Stage),
		Family:  ae.Family,
		Message: ae.Message,
	}
	if fe.Family == "" {
		fe.Family = family
	}
	if ae.Err != nil {
		fe.Message = fmt.Sprintf("%s: %v", ae.Message, ae.Err)
	}
	return fe
}
