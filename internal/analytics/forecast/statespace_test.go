package forecast

import (
	"math"
	"testing"
)

func TestDifferencingPolynomial(t *testing.T) {
	poly := differencingPolynomial(1, 1, 12)
	if len(poly) != 14 {
		t.Fatalf("Expected degree 13, got %d coefficients", len(poly))
	}

	want := map[int]float64{0: 1, 1: -1, 12: -1, 13: 1}
	for k, c := range poly {
		if c != want[k] {
			t.Errorf("Coefficient %d: expected %v, got %v", k, want[k], c)
		}
	}

	if p := differencingPolynomial(0, 0, 0); len(p) != 1 || p[0] != 1 {
		t.Errorf("Expected identity polynomial, got %v", p)
	}
}

func TestDifferencing_RoundTrip(t *testing.T) {
	values := simulateSeasonal(40, 300, 5)
	poly := differencingPolynomial(1, 1, 12)

	w := applyDifferencing(values, poly)
	if len(w) != len(values)-13 {
		t.Fatalf("Expected %d differenced values, got %d", len(values)-13, len(w))
	}

	history := values[:30]
	rebuilt := integrate(history, w[30-13:], poly)
	for i, v := range rebuilt {
		if math.Abs(v-values[30+i]) > 1e-9 {
			t.Errorf("Value %d: expected %v, got %v", i, values[30+i], v)
		}
	}

	if applyDifferencing(values[:5], poly) != nil {
		t.Error("Expected nil for a series shorter than the differencing span")
	}
}

func TestConstrainStationary(t *testing.T) {
	phi := constrainStationary([]float64{0})
	if phi[0] != 0 {
		t.Errorf("Expected zero coefficient, got %v", phi[0])
	}

	for _, x := range []float64{-50, -1, 0.3, 2, 1e6} {
		phi := constrainStationary([]float64{x})
		if math.Abs(phi[0]) >= 1 {
			t.Errorf("x=%v: coefficient %v outside the unit interval", x, phi[0])
		}
	}

	// AR(2) stationarity triangle
	for _, pair := range [][2]float64{{3, -2}, {-4, 4}, {0.5, 0.5}, {10, 10}} {
		phi := constrainStationary(pair[:])
		if !(phi[0]+phi[1] < 1 && phi[1]-phi[0] < 1 && math.Abs(phi[1]) < 1) {
			t.Errorf("x=%v: coefficients %v are not stationary", pair, phi)
		}
	}

	theta := constrainInvertible([]float64{1})
	if theta[0] >= 0 || theta[0] <= -1 {
		t.Errorf("Expected a negative invertible coefficient, got %v", theta[0])
	}
}

func TestPartialAutocorrelation(t *testing.T) {
	values := simulateAR1(400, 0, 0.7, 1)
	pacf := partialAutocorrelation(values, 3)

	if math.Abs(pacf[0]-0.7) > 0.1 {
		t.Errorf("Expected lag-1 PACF near 0.7, got %v", pacf[0])
	}
	for k := 1; k < 3; k++ {
		if math.Abs(pacf[k]) > 0.15 {
			t.Errorf("Expected lag-%d PACF near 0, got %v", k+1, pacf[k])
		}
	}

	flat := partialAutocorrelation(constantValues(10, 3), 2)
	if flat[0] != 0 || flat[1] != 0 {
		t.Errorf("Expected zero PACF for a flat series, got %v", flat)
	}
}

func TestStateSpace_WhiteNoise(t *testing.T) {
	ss, err := newStateSpace(nil, nil)
	if err != nil {
		t.Fatalf("newStateSpace failed: %v", err)
	}

	w := []float64{1, -2, 3}
	res, err := ss.filter(w)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}

	for i := range w {
		if res.predictions[i] != 0 {
			t.Errorf("Step %d: expected zero prediction, got %v", i, res.predictions[i])
		}
		if res.variances[i] != 1 {
			t.Errorf("Step %d: expected unit variance, got %v", i, res.variances[i])
		}
	}

	sigma2 := (1.0 + 4 + 9) / 3
	if math.Abs(res.variance()-sigma2) > 1e-12 {
		t.Errorf("Expected variance %v, got %v", sigma2, res.variance())
	}
	wantLL := -1.5 * (math.Log(2*math.Pi) + 1 + math.Log(sigma2))
	if math.Abs(res.logLikelihood()-wantLL) > 1e-12 {
		t.Errorf("Expected log-likelihood %v, got %v", wantLL, res.logLikelihood())
	}
}

func TestStateSpace_AR1(t *testing.T) {
	phi := 0.6
	ss, err := newStateSpace([]float64{phi}, nil)
	if err != nil {
		t.Fatalf("newStateSpace failed: %v", err)
	}

	wantP0 := 1 / (1 - phi*phi)
	if math.Abs(ss.initialCov.At(0, 0)-wantP0) > 1e-12 {
		t.Errorf("Expected initial variance %v, got %v", wantP0, ss.initialCov.At(0, 0))
	}

	res, err := ss.filter([]float64{2, 1})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if math.Abs(res.predictions[1]-phi*2) > 1e-12 {
		t.Errorf("Expected second prediction %v, got %v", phi*2, res.predictions[1])
	}
	if math.Abs(res.variances[1]-1) > 1e-12 {
		t.Errorf("Expected second variance 1, got %v", res.variances[1])
	}

	out := project(ss.transition, res.finalState, 3)
	for i, want := range []float64{phi, phi * phi, phi * phi * phi} {
		if math.Abs(out[i]-want) > 1e-12 {
			t.Errorf("Step %d: expected %v, got %v", i+1, want, out[i])
		}
	}
}

func TestStateSpace_MA1Covariance(t *testing.T) {
	theta := 0.5
	ss, err := newStateSpace(nil, []float64{theta})
	if err != nil {
		t.Fatalf("newStateSpace failed: %v", err)
	}

	if ss.dim != 2 {
		t.Fatalf("Expected state dimension 2, got %d", ss.dim)
	}
	if math.Abs(ss.initialCov.At(0, 0)-(1+theta*theta)) > 1e-12 {
		t.Errorf("Expected variance %v, got %v", 1+theta*theta, ss.initialCov.At(0, 0))
	}
}

func TestParamLayout_Polynomials(t *testing.T) {
	layout := paramLayout{p: 1, q: 1, sp: 1, sq: 1, period: 4}
	x := []float64{0.5, 0.5, 0.5, 0.5}
	phi, theta, sphi, stheta := layout.coefficients(x)

	ar, ma := layout.polynomials(x)
	if len(ar) != 5 || len(ma) != 5 {
		t.Fatalf("Expected 5 AR and 5 MA coefficients, got %d and %d", len(ar), len(ma))
	}

	if math.Abs(ar[0]-phi[0]) > 1e-12 || math.Abs(ar[3]-sphi[0]) > 1e-12 {
		t.Errorf("Unexpected AR expansion %v", ar)
	}
	if math.Abs(ar[4]+phi[0]*sphi[0]) > 1e-12 {
		t.Errorf("Expected cross term %v, got %v", -phi[0]*sphi[0], ar[4])
	}
	if math.Abs(ma[0]-theta[0]) > 1e-12 || math.Abs(ma[4]-theta[0]*stheta[0]) > 1e-12 {
		t.Errorf("Unexpected MA expansion %v", ma)
	}
}
