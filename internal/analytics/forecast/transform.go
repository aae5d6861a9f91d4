package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// maxPartialAutocorrelation bounds every mapped partial autocorrelation so
// fitted polynomials stay strictly inside the stationary region and the
// initial covariance stays well conditioned.
const maxPartialAutocorrelation = 0.99

// constrainStationary maps unconstrained values to the coefficients of a
// stationary AR polynomial 1 - phi_1 B - ... - phi_k B^k. Each value is
// first squashed into a partial autocorrelation in (-0.99, 0.99) and the
// coefficients are then built with the Durbin-Levinson recursion.
func constrainStationary(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	phi := make([]float64, n)
	prev := make([]float64, n)
	for k := 0; k < n; k++ {
		r := maxPartialAutocorrelation * x[k] / math.Sqrt(1+x[k]*x[k])

		copy(prev, phi[:k])
		phi[k] = r
		for j := 0; j < k; j++ {
			phi[j] = prev[j] - r*prev[k-1-j]
		}
	}
	return phi
}

// constrainInvertible maps unconstrained values to the coefficients of an
// invertible MA polynomial 1 + theta_1 B + ... + theta_k B^k.
func constrainInvertible(x []float64) []float64 {
	theta := constrainStationary(x)
	for i := range theta {
		theta[i] = -theta[i]
	}
	return theta
}

// unconstrainPartial maps partial autocorrelations back to the
// unconstrained space. Inputs are clipped to |r| <= 0.95 so starting
// values never sit on the boundary.
func unconstrainPartial(pacf []float64) []float64 {
	out := make([]float64, len(pacf))
	for i, r := range pacf {
		u := math.Max(-0.95, math.Min(0.95, r)) / maxPartialAutocorrelation
		out[i] = u / math.Sqrt(1-u*u)
	}
	return out
}

// autocorrelation calculates the sample autocorrelation function for lags 1..k
func autocorrelation(values []float64, k int) []float64 {
	n := len(values)
	if n == 0 || k <= 0 {
		return []float64{}
	}

	mu := stat.Mean(values, nil)
	variance := 0.0
	for _, v := range values {
		diff := v - mu
		variance += diff * diff
	}

	acf := make([]float64, k)
	if variance == 0 {
		return acf
	}

	for lag := 1; lag <= k && lag < n; lag++ {
		cov := 0.0
		for t := lag; t < n; t++ {
			cov += (values[t] - mu) * (values[t-lag] - mu)
		}
		acf[lag-1] = cov / variance
	}

	return acf
}

// partialAutocorrelation returns the sample PACF for lags 1..k using the
// Levinson-Durbin recursion on the sample ACF. Lags the recursion cannot
// reach are left at zero.
func partialAutocorrelation(values []float64, k int) []float64 {
	pacf := make([]float64, k)
	if k == 0 {
		return pacf
	}
	acf := autocorrelation(values, k)

	phi := make([]float64, k)
	prev := make([]float64, k)
	v := 1.0
	for m := 0; m < k; m++ {
		num := acf[m]
		for j := 0; j < m; j++ {
			num -= phi[j] * acf[m-1-j]
		}
		if v <= 1e-12 {
			break
		}
		r := num / v
		if math.IsNaN(r) || math.Abs(r) >= 1 {
			break
		}

		copy(prev, phi[:m])
		phi[m] = r
		for j := 0; j < m; j++ {
			phi[j] = prev[j] - r*prev[m-1-j]
		}
		v *= 1 - r*r
		pacf[m] = r
	}
	return pacf
}
