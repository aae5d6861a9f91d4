package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FittedModel is the result of a successful fit. It holds the estimated
// coefficients and everything the Forecaster needs; it is never persisted.
type FittedModel struct {
	Spec ModelSpec

	AR         []float64 // phi_1..phi_p
	MA         []float64 // theta_1..theta_q
	SeasonalAR []float64 // Phi_1..Phi_P
	SeasonalMA []float64 // Theta_1..Theta_Q

	Variance      float64 // innovation variance sigma^2
	LogLikelihood float64 // zero for degenerate fits
	Mean          float64 // removed from the working series before fitting
	Iterations    int
	Status        string // optimiser termination status
	Degenerate    bool   // flat working series, fitted as a constant

	periods     []int
	original    []float64
	differenced []float64
	diffPoly    []float64
	transition  *mat.Dense
	finalState  []float64
	oneStep     []float64 // one-step predictions of the working series
}

// NumObservations returns the length of the series the model was fit on
func (m *FittedModel) NumObservations() int {
	return len(m.original)
}

// LastPeriod returns the last observed period
func (m *FittedModel) LastPeriod() int {
	return m.periods[len(m.periods)-1]
}

// FittedPeriods returns the periods covered by FittedValues
func (m *FittedModel) FittedPeriods() []int {
	skip := len(m.diffPoly) - 1
	return append([]int(nil), m.periods[skip:]...)
}

// FittedValues returns the one-step-ahead in-sample predictions on the
// original scale, one per observation after the differencing span.
func (m *FittedModel) FittedValues() []float64 {
	skip := len(m.diffPoly) - 1
	fitted := make([]float64, len(m.differenced))
	for i, pred := range m.oneStep {
		t := i + skip
		fitted[i] = pred + m.Mean + m.original[t] - m.differenced[i]
	}
	return fitted
}

// Info returns the model metadata reported with a forecast
func (m *FittedModel) Info() ModelInfo {
	params := m.Spec.Parameters()
	params["ar"] = append([]float64(nil), m.AR...)
	params["ma"] = append([]float64(nil), m.MA...)
	if m.Spec.Family == FamilySARIMA {
		params["seasonal_ar"] = append([]float64(nil), m.SeasonalAR...)
		params["seasonal_ma"] = append([]float64(nil), m.SeasonalMA...)
	}

	return ModelInfo{
		Algorithm:     string(m.Spec.Family),
		Model:         m.Spec.String(),
		Parameters:    params,
		Variance:      m.Variance,
		LogLikelihood: m.LogLikelihood,
		Iterations:    m.Iterations,
		DataPoints:    m.NumObservations(),
	}
}

func (m *FittedModel) String() string {
	return fmt.Sprintf("%s ll=%.4f sigma2=%.4f", m.Spec, m.LogLikelihood, m.Variance)
}
