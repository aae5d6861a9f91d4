package forecast

import (
	"context"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/crimecast/crimecast/internal/analytics"
)

const (
	// objectivePenalty replaces the objective wherever the likelihood
	// cannot be evaluated.
	objectivePenalty = 1e10
	// convergenceWindow is the number of consecutive iterations without
	// sufficient improvement before the fit counts as converged.
	convergenceWindow = 3
	// ridgePenalty weighs a quadratic penalty on the unconstrained
	// parameters. It gives short series a finite optimum instead of letting
	// the optimiser run towards the stationarity boundary.
	ridgePenalty = 1e-4
	// flatTolerance is the relative spread under which a working series
	// counts as flat.
	flatTolerance = 1e-10
)

// EstimatorConfig controls the likelihood optimiser
type EstimatorConfig struct {
	MaxIterations     int     // Iteration cap, hitting it is a ConvergenceFailure
	Tolerance         float64 // Relative change in the objective that counts as converged
	GradientThreshold float64 // Gradient norm that counts as converged
	MinMargin         int     // Spare observations required beyond the model's lags
}

// DefaultEstimatorConfig returns default estimator configuration
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		MaxIterations:     500,
		Tolerance:         1e-6,
		GradientThreshold: 1e-8,
		MinMargin:         2,
	}
}

func (c EstimatorConfig) withDefaults() EstimatorConfig {
	d := DefaultEstimatorConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.GradientThreshold <= 0 {
		c.GradientThreshold = d.GradientThreshold
	}
	if c.MinMargin < 0 {
		c.MinMargin = d.MinMargin
	}
	return c
}

// Estimator fits one model family to a series
type Estimator interface {
	// Family returns the model family this estimator fits
	Family() Family
	// Fit estimates the coefficients of spec on series
	Fit(ctx context.Context, series *analytics.TimeSeries, spec ModelSpec) (*FittedModel, error)
}

// EstimatorFactory creates an estimator from configuration
type EstimatorFactory func(config EstimatorConfig) Estimator

var (
	estimatorMu       sync.RWMutex
	estimatorRegistry = make(map[Family]EstimatorFactory)
)

// RegisterEstimator adds an estimator factory to the registry
func RegisterEstimator(family Family, factory EstimatorFactory) {
	estimatorMu.Lock()
	defer estimatorMu.Unlock()
	estimatorRegistry[family] = factory
}

// EstimatorFor returns the estimator registered for family
func EstimatorFor(family Family, config EstimatorConfig) (Estimator, error) {
	estimatorMu.RLock()
	factory, ok := estimatorRegistry[family]
	estimatorMu.RUnlock()
	if !ok {
		return nil, analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, string(family),
			"unknown model family %q", family)
	}
	return factory(config), nil
}

// ListFamilies returns the registered model families in sorted order
func ListFamilies() []Family {
	estimatorMu.RLock()
	defer estimatorMu.RUnlock()
	families := make([]Family, 0, len(estimatorRegistry))
	for f := range estimatorRegistry {
		families = append(families, f)
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// Fit dispatches to the estimator registered for spec.Family
func Fit(ctx context.Context, series *analytics.TimeSeries, spec ModelSpec, config EstimatorConfig) (*FittedModel, error) {
	est, err := EstimatorFor(spec.Family, config)
	if err != nil {
		return nil, err
	}
	return est.Fit(ctx, series, spec)
}

// paramLayout describes how the optimiser's parameter vector splits into
// non-seasonal and seasonal AR/MA coefficients.
type paramLayout struct {
	p, q   int
	sp, sq int
	period int
}

func (l paramLayout) size() int {
	return l.p + l.q + l.sp + l.sq
}

// coefficients maps an unconstrained vector to stationary AR and
// invertible MA coefficients.
func (l paramLayout) coefficients(x []float64) (phi, theta, sphi, stheta []float64) {
	i := 0
	phi = constrainStationary(x[i : i+l.p])
	i += l.p
	theta = constrainInvertible(x[i : i+l.q])
	i += l.q
	sphi = constrainStationary(x[i : i+l.sp])
	i += l.sp
	stheta = constrainInvertible(x[i : i+l.sq])
	return phi, theta, sphi, stheta
}

// polynomials multiplies out (1 - phi(B))(1 - Phi(B^s)) and
// (1 + theta(B))(1 + Theta(B^s)) and returns the resulting AR and MA
// coefficients, excluding the leading one.
func (l paramLayout) polynomials(x []float64) (ar, ma []float64) {
	phi, theta, sphi, stheta := l.coefficients(x)

	arPoly := polyMul(lagPolynomial(phi, 1, -1), lagPolynomial(sphi, l.period, -1))
	maPoly := polyMul(lagPolynomial(theta, 1, 1), lagPolynomial(stheta, l.period, 1))

	ar = make([]float64, len(arPoly)-1)
	for k := 1; k < len(arPoly); k++ {
		ar[k-1] = -arPoly[k]
	}
	ma = append([]float64(nil), maPoly[1:]...)
	return ar, ma
}

// lagPolynomial returns 1 + sign*(c_1 B^step + c_2 B^{2 step} + ...)
func lagPolynomial(coef []float64, step int, sign float64) []float64 {
	if len(coef) == 0 || step <= 0 {
		return []float64{1}
	}
	poly := make([]float64, len(coef)*step+1)
	poly[0] = 1
	for i, c := range coef {
		poly[(i+1)*step] = sign * c
	}
	return poly
}

// startingValues seeds the AR terms from the sample partial
// autocorrelations and leaves MA and seasonal terms at zero.
func (l paramLayout) startingValues(w []float64) []float64 {
	x0 := make([]float64, l.size())
	if l.p > 0 {
		copy(x0, unconstrainPartial(partialAutocorrelation(w, l.p)))
	}
	return x0
}

// armaFit is the outcome of maximising the likelihood of a working series
type armaFit struct {
	phi, theta   []float64
	sphi, stheta []float64
	ss           *stateSpace
	filter       *filterResult
	iterations   int
	status       string
}

// maximizeLikelihood fits a zero-mean ARMA model with the given layout to
// w by exact Gaussian maximum likelihood.
func maximizeLikelihood(ctx context.Context, w []float64, layout paramLayout, cfg EstimatorConfig, family string) (*armaFit, error) {
	n := float64(len(w))

	evaluate := func(x []float64) (*stateSpace, *filterResult, error) {
		ar, ma := layout.polynomials(x)
		ss, err := newStateSpace(ar, ma)
		if err != nil {
			return nil, nil, err
		}
		res, err := ss.filter(w)
		if err != nil {
			return nil, nil, err
		}
		return ss, res, nil
	}

	objective := func(x []float64) float64 {
		_, res, err := evaluate(x)
		if err != nil {
			return objectivePenalty
		}
		if !(res.variance() > 0) {
			return objectivePenalty
		}
		nll := -res.logLikelihood() / n
		if math.IsNaN(nll) || math.IsInf(nll, 0) {
			return objectivePenalty
		}
		return nll + ridgePenalty*floats.Dot(x, x)
	}

	gradSettings := &fd.Settings{Formula: fd.Central}
	x := layout.startingValues(w)
	iterations := 0
	status := "NoParameters"

	if layout.size() > 0 {
		problem := optimize.Problem{
			Func: objective,
			Grad: func(grad, x []float64) {
				fd.Gradient(grad, objective, x, gradSettings)
			},
			Status: func() (optimize.Status, error) {
				if err := ctx.Err(); err != nil {
					return optimize.Failure, err
				}
				return optimize.NotTerminated, nil
			},
		}
		settings := &optimize.Settings{
			MajorIterations:   cfg.MaxIterations,
			GradientThreshold: cfg.GradientThreshold,
			Converger: &optimize.FunctionConverge{
				Absolute:   cfg.Tolerance * 1e-4,
				Relative:   cfg.Tolerance,
				Iterations: convergenceWindow,
			},
		}

		result, err := optimize.Minimize(problem, x, settings, &optimize.BFGS{})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, analytics.WrapError(analytics.KindTimeout, analytics.StageEstimator, family, ctxErr,
				"fit interrupted")
		}
		if result == nil {
			return nil, analytics.WrapError(analytics.KindConvergenceFailure, analytics.StageEstimator, family, err,
				"optimizer returned no result")
		}
		iterations = result.Stats.MajorIterations
		status, err = settle(result, err, family)
		if err != nil {
			return nil, err
		}
		x = result.X
	}

	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, analytics.NewError(analytics.KindNumericalInstability, analytics.StageEstimator, family,
				"non-finite parameter estimate")
		}
	}

	ss, res, err := evaluate(x)
	if err != nil {
		return nil, analytics.WrapError(analytics.KindNumericalInstability, analytics.StageEstimator, family, err,
			"likelihood cannot be evaluated at the estimate")
	}
	ll := res.logLikelihood()
	if !(res.variance() > 0) || math.IsNaN(ll) || math.IsInf(ll, 0) {
		return nil, analytics.NewError(analytics.KindNumericalInstability, analytics.StageEstimator, family,
			"non-finite likelihood at the estimate")
	}

	phi, theta, sphi, stheta := layout.coefficients(x)
	return &armaFit{
		phi:        phi,
		theta:      theta,
		sphi:       sphi,
		stheta:     stheta,
		ss:         ss,
		filter:     res,
		iterations: iterations,
		status:     status,
	}, nil
}

// settle classifies how an optimiser run ended. Hitting a limit is a
// ConvergenceFailure. A line search that gives up keeps the best finite
// point found so far as a stalled fit.
func settle(result *optimize.Result, err error, family string) (string, error) {
	iterations := result.Stats.MajorIterations
	status := result.Status.String()

	switch result.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit,
		optimize.GradientEvaluationLimit, optimize.RuntimeLimit:
		return status, analytics.NewError(analytics.KindConvergenceFailure, analytics.StageEstimator, family,
			"no convergence after %d iterations (%s)", iterations, status)
	}

	if err == nil {
		return status, nil
	}
	if len(result.X) == 0 || math.IsNaN(result.F) || math.IsInf(result.F, 0) || result.F >= objectivePenalty {
		return status, analytics.WrapError(analytics.KindNumericalInstability, analytics.StageEstimator, family, err,
			"optimizer stopped after %d iterations without a finite estimate", iterations)
	}
	return "Stalled", nil
}

// fitSeries prepares the working series for spec and fits it. It is the
// shared body of the family estimators.
func fitSeries(ctx context.Context, series *analytics.TimeSeries, spec ModelSpec, layout paramLayout, cfg EstimatorConfig) (*FittedModel, error) {
	family := string(spec.Family)

	n := series.Len()
	if need := spec.MinObservations(cfg.MinMargin); n < need {
		return nil, analytics.NewError(analytics.KindInsufficientData, analytics.StageEstimator, family,
			"%s needs at least %d observations, got %d", spec, need, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, analytics.WrapError(analytics.KindTimeout, analytics.StageEstimator, family, err,
			"fit not started")
	}

	values := series.Values()
	poly := differencingPolynomial(spec.Order.D, spec.Seasonal.D, spec.Seasonal.Period)
	differenced := applyDifferencing(values, poly)
	if len(differenced) == 0 {
		return nil, analytics.NewError(analytics.KindInsufficientData, analytics.StageEstimator, family,
			"no observations left after differencing")
	}

	model := &FittedModel{
		Spec:        spec,
		periods:     series.Periods(),
		original:    values,
		differenced: differenced,
		diffPoly:    poly,
	}

	// The sample mean of the working series is removed before fitting and
	// added back on forecast; after differencing it acts as a drift. A flat
	// working series is fitted as its constant.
	model.Mean = meanOf(differenced)
	working := make([]float64, len(differenced))
	flat := isFlat(differenced)
	if !flat {
		for i, v := range differenced {
			working[i] = v - model.Mean
		}
	}

	if flat {
		ss, err := newStateSpace(nil, nil)
		if err != nil {
			return nil, analytics.WrapError(analytics.KindNumericalInstability, analytics.StageEstimator, family, err,
				"degenerate model")
		}
		res, err := ss.filter(working)
		if err != nil {
			return nil, analytics.WrapError(analytics.KindNumericalInstability, analytics.StageEstimator, family, err,
				"degenerate model")
		}
		model.AR = make([]float64, layout.p)
		model.MA = make([]float64, layout.q)
		model.SeasonalAR = make([]float64, layout.sp)
		model.SeasonalMA = make([]float64, layout.sq)
		model.Degenerate = true
		model.Status = "Flat"
		model.transition = ss.transition
		model.finalState = res.finalState
		model.oneStep = res.predictions
		return model, nil
	}

	fit, err := maximizeLikelihood(ctx, working, layout, cfg, family)
	if err != nil {
		return nil, err
	}

	model.AR = fit.phi
	model.MA = fit.theta
	model.SeasonalAR = fit.sphi
	model.SeasonalMA = fit.stheta
	model.Variance = fit.filter.variance()
	model.LogLikelihood = fit.filter.logLikelihood()
	model.Iterations = fit.iterations
	model.Status = fit.status
	model.transition = fit.ss.transition
	model.finalState = fit.filter.finalState
	model.oneStep = fit.filter.predictions
	return model, nil
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}

func isFlat(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	lo, hi := floats.Min(values), floats.Max(values)
	scale := math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	return hi-lo <= flatTolerance*scale
}

func checkSpecFamily(spec ModelSpec, want Family) error {
	if spec.Family != want {
		return analytics.NewError(analytics.KindInvalidSpec, analytics.StageEstimator, string(spec.Family),
			"%s estimator cannot fit %s", want, spec)
	}
	return spec.Validate()
}
