package forecast

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/optimize"

	"github.com/crimecast/crimecast/internal/analytics"
)

func TestModelSpec_MinObservations(t *testing.T) {
	tests := []struct {
		spec ModelSpec
		want int
		str  string
	}{
		{ARIMASpec(), 8, "ARIMA(5,1,0)"},
		{SARIMASpec(), 41, "SARIMA(1,1,1)x(1,1,1,12)"},
	}

	for _, tt := range tests {
		if got := tt.spec.MinObservations(2); got != tt.want {
			t.Errorf("%s: expected min observations %d, got %d", tt.str, tt.want, got)
		}
		if tt.spec.String() != tt.str {
			t.Errorf("Expected %s, got %s", tt.str, tt.spec.String())
		}
		if err := tt.spec.Validate(); err != nil {
			t.Errorf("%s: unexpected validation error %v", tt.str, err)
		}
	}
}

func TestModelSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec ModelSpec
	}{
		{"negative order", ModelSpec{Family: FamilyARIMA, Order: Order{P: -1}}},
		{"seasonal terms on arima", ModelSpec{Family: FamilyARIMA, Seasonal: SeasonalOrder{P: 1, Period: 12}}},
		{"missing period", ModelSpec{Family: FamilySARIMA, Order: Order{P: 1}, Seasonal: SeasonalOrder{P: 1}}},
		{"unknown family", ModelSpec{Family: "ets"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); !errors.Is(err, analytics.ErrInvalidSpec) {
				t.Errorf("Expected InvalidSpec, got %v", err)
			}
		})
	}
}

func TestEstimatorRegistry(t *testing.T) {
	families := ListFamilies()
	if len(families) != 2 || families[0] != FamilyARIMA || families[1] != FamilySARIMA {
		t.Fatalf("Expected [arima sarima], got %v", families)
	}

	for _, f := range families {
		est, err := EstimatorFor(f, DefaultEstimatorConfig())
		if err != nil {
			t.Fatalf("EstimatorFor(%s) failed: %v", f, err)
		}
		if est.Family() != f {
			t.Errorf("Expected family %s, got %s", f, est.Family())
		}
	}

	if _, err := EstimatorFor("prophet", DefaultEstimatorConfig()); !errors.Is(err, analytics.ErrInvalidSpec) {
		t.Errorf("Expected InvalidSpec for unknown family, got %v", err)
	}
}

func TestEstimator_RejectsOtherFamily(t *testing.T) {
	series := mustSeries(t, scenarioRows)
	est := NewARIMAEstimator(DefaultEstimatorConfig())

	_, err := est.Fit(context.Background(), series, SARIMASpec())
	if !errors.Is(err, analytics.ErrInvalidSpec) {
		t.Errorf("Expected InvalidSpec, got %v", err)
	}
}

func TestEstimator_MinimumLengthBoundary(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultEstimatorConfig()

	short := mustSeries(t, scenarioRows[:7])
	_, err := Fit(ctx, short, ARIMASpec(), cfg)
	if !errors.Is(err, analytics.ErrInsufficientData) {
		t.Errorf("Expected InsufficientData for 7 observations, got %v", err)
	}

	exact := mustSeries(t, scenarioRows)
	if _, err := Fit(ctx, exact, ARIMASpec(), cfg); err != nil {
		t.Errorf("Expected 8 observations to fit, got %v", err)
	}

	cfg.MinMargin = 5
	_, err = Fit(ctx, exact, ARIMASpec(), cfg)
	if !errors.Is(err, analytics.ErrInsufficientData) {
		t.Errorf("Expected InsufficientData with a larger margin, got %v", err)
	}
}

func TestEstimator_IterationCap(t *testing.T) {
	series := seriesFromValues(t, 1990, simulateAR1(30, 200, 0.6, 3))
	cfg := DefaultEstimatorConfig()
	cfg.MaxIterations = 1

	_, err := Fit(context.Background(), series, ARIMASpec(), cfg)
	if !errors.Is(err, analytics.ErrConvergenceFailure) {
		t.Fatalf("Expected ConvergenceFailure, got %v", err)
	}
}

func TestEstimator_CancelledContext(t *testing.T) {
	series := mustSeries(t, scenarioRows)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, series, ARIMASpec(), DefaultEstimatorConfig())
	if !errors.Is(err, analytics.ErrTimeout) {
		t.Fatalf("Expected Timeout, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the cause to be context.Canceled, got %v", err)
	}
}

func TestEstimator_NoDifferencingRemovesMean(t *testing.T) {
	values := simulateAR1(40, 300, 0.5, 11)
	series := seriesFromValues(t, 1970, values)
	spec := ModelSpec{Family: FamilyARIMA, Order: Order{P: 1}}

	model, err := Fit(context.Background(), series, spec, DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(model.Mean-series.Mean()) > 1e-9 {
		t.Errorf("Expected mean %v, got %v", series.Mean(), model.Mean)
	}
	if math.Abs(model.AR[0]) >= 1 {
		t.Errorf("Expected stationary AR coefficient, got %v", model.AR[0])
	}

	result, err := Forecast(model, 50)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	last := result.Predictions[len(result.Predictions)-1].Value
	if math.Abs(last-model.Mean) > 1 {
		t.Errorf("Expected long-horizon forecast to revert to the mean %v, got %v", model.Mean, last)
	}
}

func TestFittedModel_FittedValues(t *testing.T) {
	series := mustSeries(t, scenarioRows)
	model, err := Fit(context.Background(), series, ARIMASpec(), DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	fitted := model.FittedValues()
	periods := model.FittedPeriods()
	if len(fitted) != 7 || len(periods) != 7 {
		t.Fatalf("Expected 7 fitted values, got %d values and %d periods", len(fitted), len(periods))
	}
	if periods[0] != 2011 {
		t.Errorf("Expected fitted values to start at 2011, got %d", periods[0])
	}
	assertFinite(t, fitted)

	again := model.FittedValues()
	for i := range fitted {
		if fitted[i] != again[i] {
			t.Errorf("Fitted value %d is not deterministic", i)
		}
	}

	info := model.Info()
	if info.Model != "ARIMA(5,1,0)" {
		t.Errorf("Unexpected model name %s", info.Model)
	}
	if ar, ok := info.Parameters["ar"].([]float64); !ok || len(ar) != 5 {
		t.Errorf("Expected 5 AR coefficients in parameters, got %v", info.Parameters["ar"])
	}
}

func TestEstimator_ShortSeriesStaysInsideParameterSpace(t *testing.T) {
	series := mustSeries(t, scenarioRows)

	model, err := Fit(context.Background(), series, ARIMASpec(), DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if model.Iterations >= DefaultEstimatorConfig().MaxIterations {
		t.Errorf("Expected the fit to stop before the iteration cap, got %d iterations", model.Iterations)
	}
	if !(model.Variance > 0) {
		t.Errorf("Expected positive variance, got %v", model.Variance)
	}
	assertFinite(t, model.AR)
	assertFinite(t, []float64{model.LogLikelihood})

	for _, x := range [][]float64{{1e3, -1e3, 1e3, 1e3, 1e3}, {40, 40, 40, 40, 40}} {
		phi := constrainStationary(x)
		pacf := partialFromCoefficients(phi)
		for k, r := range pacf {
			if math.Abs(r) > maxPartialAutocorrelation+1e-6 {
				t.Errorf("x=%v: partial autocorrelation %d is %v, beyond the cap", x, k, r)
			}
		}
	}
}

func TestSettle(t *testing.T) {
	lineSearch := errors.New("linesearch: failed to converge")

	tests := []struct {
		name   string
		status optimize.Status
		f      float64
		x      []float64
		err    error
		want   string
		kind   analytics.Kind
	}{
		{"converged", optimize.FunctionConvergence, 0.7, []float64{0.1}, nil, optimize.FunctionConvergence.String(), ""},
		{"gradient threshold", optimize.GradientThreshold, 0.7, []float64{0.1}, nil, optimize.GradientThreshold.String(), ""},
		{"stalled line search keeps best point", optimize.Failure, 0.747, []float64{0.67, 0.39}, lineSearch, "Stalled", ""},
		{"iteration cap", optimize.IterationLimit, 0.7, []float64{0.1}, nil, "", analytics.KindConvergenceFailure},
		{"evaluation cap", optimize.FunctionEvaluationLimit, 0.7, []float64{0.1}, nil, "", analytics.KindConvergenceFailure},
		{"no finite point", optimize.Failure, objectivePenalty, []float64{0.1}, lineSearch, "", analytics.KindNumericalInstability},
		{"nan objective", optimize.Failure, math.NaN(), []float64{0.1}, lineSearch, "", analytics.KindNumericalInstability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &optimize.Result{
				Location: optimize.Location{X: tt.x, F: tt.f},
				Stats:    optimize.Stats{MajorIterations: 32},
				Status:   tt.status,
			}

			status, err := settle(result, tt.err, "arima")
			if tt.kind != "" {
				if analytics.KindOf(err) != tt.kind {
					t.Fatalf("Expected %s, got %v", tt.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if status != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, status)
			}
		})
	}
}

// partialFromCoefficients inverts the Durbin-Levinson recursion
func partialFromCoefficients(phi []float64) []float64 {
	a := append([]float64(nil), phi...)
	pacf := make([]float64, len(a))
	for k := len(a) - 1; k >= 0; k-- {
		r := a[k]
		pacf[k] = r
		prev := make([]float64, k)
		for j := 0; j < k; j++ {
			prev[j] = (a[j] + r*a[k-1-j]) / (1 - r*r)
		}
		a = prev
	}
	return pacf
}
