package forecast

import (
	"fmt"

	"github.com/crimecast/crimecast/internal/analytics"
)

// Family identifies a model family
type Family string

const (
	FamilyARIMA  Family = "arima"
	FamilySARIMA Family = "sarima"
)

// Order is the non-seasonal (p, d, q) order
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

// SeasonalOrder is the seasonal (P, D, Q, s) order
type SeasonalOrder struct {
	P      int `json:"P"`
	D      int `json:"D"`
	Q      int `json:"Q"`
	Period int `json:"s"`
}

// ModelSpec describes one model to fit. Specs are plain values and are
// shared read-only between goroutines.
type ModelSpec struct {
	Family   Family        `json:"family"`
	Order    Order         `json:"order"`
	Seasonal SeasonalOrder `json:"seasonal_order"`
}

// ARIMASpec returns the fixed non-seasonal model ARIMA(5,1,0)
func ARIMASpec() ModelSpec {
	return ModelSpec{
		Family: FamilyARIMA,
		Order:  Order{P: 5, D: 1, Q: 0},
	}
}

// SARIMASpec returns the fixed seasonal model SARIMA(1,1,1)x(1,1,1,12)
func SARIMASpec() ModelSpec {
	return ModelSpec{
		Family:   FamilySARIMA,
		Order:    Order{P: 1, D: 1, Q: 1},
		Seasonal: SeasonalOrder{P: 1, D: 1, Q: 1, Period: 12},
	}
}

// DefaultSpecs returns the two families in reporting order
func DefaultSpecs() []ModelSpec {
	return []ModelSpec{ARIMASpec(), SARIMASpec()}
}

// Validate checks orders are non-negative and consistent with the family
func (s ModelSpec) Validate() error {
	family := string(s.Family)
	if s.Order.P < 0 || s.Order.D < 0 || s.Order.Q < 0 {
		return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, family,
			"negative order %v", s.Order)
	}
	if s.Seasonal.P < 0 || s.Seasonal.D < 0 || s.Seasonal.Q < 0 || s.Seasonal.Period < 0 {
		return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, family,
			"negative seasonal order %v", s.Seasonal)
	}

	switch s.Family {
	case FamilyARIMA:
		if s.hasSeasonalTerms() {
			return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, family,
				"non-seasonal model has seasonal order %v", s.Seasonal)
		}
	case FamilySARIMA:
		if s.Seasonal.Period < 2 {
			return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, family,
				"seasonal period must be at least 2, got %d", s.Seasonal.Period)
		}
	default:
		return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, family,
			"unknown model family %q", s.Family)
	}
	return nil
}

func (s ModelSpec) hasSeasonalTerms() bool {
	return s.Seasonal.P > 0 || s.Seasonal.D > 0 || s.Seasonal.Q > 0
}

// ParamCount returns the number of estimated ARMA coefficients
func (s ModelSpec) ParamCount() int {
	return s.Order.P + s.Order.Q + s.Seasonal.P + s.Seasonal.Q
}

// DifferencingSpan is the number of observations consumed by differencing
func (s ModelSpec) DifferencingSpan() int {
	return s.Order.D + s.Seasonal.D*s.Seasonal.Period
}

// MinObservations returns the smallest series length the model can be fit
// on: every lag the model touches plus margin. The margin is an absolute
// count of spare observations, not a multiple of the parameter count;
// ARIMA(5,1,0) with margin 2 needs 8 observations.
func (s ModelSpec) MinObservations(margin int) int {
	if margin < 0 {
		margin = 0
	}
	o, so := s.Order, s.Seasonal
	return o.P + o.D + o.Q + so.Period*(so.P+so.D+so.Q) + margin
}

// String renders the model in the usual textbook notation
func (s ModelSpec) String() string {
	o := s.Order
	if s.Family == FamilySARIMA {
		so := s.Seasonal
		return fmt.Sprintf("SARIMA(%d,%d,%d)x(%d,%d,%d,%d)", o.P, o.D, o.Q, so.P, so.D, so.Q, so.Period)
	}
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Parameters returns the orders as a flat map for ModelInfo
func (s ModelSpec) Parameters() map[string]interface{} {
	params := map[string]interface{}{
		"p": s.Order.P,
		"d": s.Order.D,
		"q": s.Order.Q,
	}
	if s.Family == FamilySARIMA {
		params["P"] = s.Seasonal.P
		params["D"] = s.Seasonal.D
		params["Q"] = s.Seasonal.Q
		params["s"] = s.Seasonal.Period
	}
	return params
}
