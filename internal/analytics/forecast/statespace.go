package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errNonPositiveVariance = errors.New("prediction variance is not positive")

// stateSpace is the Harvey representation of a zero-mean ARMA process
//
//	a_{t+1} = T a_t + R e_t
//	w_t     = a_t[0]
//
// where T carries the AR coefficients in its first column and ones on the
// superdiagonal, and R = [1, theta_1, ..., theta_{r-1}].
type stateSpace struct {
	dim        int
	transition *mat.Dense
	noise      *mat.Dense // R R^T
	initialCov *mat.Dense
}

// newStateSpace builds the representation for the full (already
// multiplied-out) AR and MA coefficient vectors.
func newStateSpace(ar, ma []float64) (*stateSpace, error) {
	r := len(ar)
	if len(ma)+1 > r {
		r = len(ma) + 1
	}

	transition := mat.NewDense(r, r, nil)
	for i, a := range ar {
		transition.Set(i, 0, a)
	}
	for i := 0; i < r-1; i++ {
		transition.Set(i, i+1, 1)
	}

	selection := make([]float64, r)
	selection[0] = 1
	copy(selection[1:], ma)
	noise := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			noise.Set(i, j, selection[i]*selection[j])
		}
	}

	initialCov, err := stationaryCovariance(transition, noise)
	if err != nil {
		return nil, err
	}

	return &stateSpace{
		dim:        r,
		transition: transition,
		noise:      noise,
		initialCov: initialCov,
	}, nil
}

// stationaryCovariance solves the discrete Lyapunov equation
// P = T P T^T + Q through (I - T kron T) vec(P) = vec(Q).
func stationaryCovariance(transition, noise *mat.Dense) (*mat.Dense, error) {
	r, _ := transition.Dims()
	rr := r * r

	system := mat.NewDense(rr, rr, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			tij := transition.At(i, j)
			if tij == 0 {
				continue
			}
			for k := 0; k < r; k++ {
				for l := 0; l < r; l++ {
					system.Set(i*r+k, j*r+l, -tij*transition.At(k, l))
				}
			}
		}
	}
	for i := 0; i < rr; i++ {
		system.Set(i, i, system.At(i, i)+1)
	}

	rhs := mat.NewVecDense(rr, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			rhs.SetVec(i*r+j, noise.At(i, j))
		}
	}

	var vec mat.VecDense
	if err := vec.SolveVec(system, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve initial covariance: %w", err)
		}
		// ill-conditioned but solved; the filter rejects unusable results
	}

	cov := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := 0.5 * (vec.AtVec(i*r+j) + vec.AtVec(j*r+i))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("initial covariance is not finite")
			}
			cov.Set(i, j, v)
		}
	}
	return cov, nil
}

// filterResult holds the Kalman filter output over one series
type filterResult struct {
	predictions []float64 // one-step predictions of w_t
	innovations []float64
	variances   []float64 // innovation variances in units of sigma^2
	finalState  []float64 // filtered state a_{n|n}
	sumLogF     float64
	sumScaledSq float64
}

// filter runs the Kalman filter over w starting from the stationary
// distribution.
func (ss *stateSpace) filter(w []float64) (*filterResult, error) {
	r := ss.dim
	n := len(w)

	res := &filterResult{
		predictions: make([]float64, n),
		innovations: make([]float64, n),
		variances:   make([]float64, n),
	}

	state := mat.NewVecDense(r, nil)
	cov := mat.DenseCopyOf(ss.initialCov)
	gain := mat.NewVecDense(r, nil)
	filtered := mat.NewVecDense(r, nil)
	filteredCov := mat.NewDense(r, r, nil)
	var tmp mat.Dense

	for t, wt := range w {
		f := cov.At(0, 0)
		if !(f > 0) || math.IsInf(f, 0) {
			return nil, errNonPositiveVariance
		}

		pred := state.AtVec(0)
		v := wt - pred
		res.predictions[t] = pred
		res.innovations[t] = v
		res.variances[t] = f
		res.sumLogF += math.Log(f)
		res.sumScaledSq += v * v / f

		for i := 0; i < r; i++ {
			gain.SetVec(i, cov.At(i, 0)/f)
		}
		filtered.AddScaledVec(state, v, gain)
		for i := 0; i < r; i++ {
			gi := gain.AtVec(i)
			for j := 0; j < r; j++ {
				filteredCov.Set(i, j, cov.At(i, j)-gi*cov.At(0, j))
			}
		}

		state.MulVec(ss.transition, filtered)
		tmp.Mul(ss.transition, filteredCov)
		cov.Mul(&tmp, ss.transition.T())
		cov.Add(cov, ss.noise)
	}

	res.finalState = make([]float64, r)
	for i := 0; i < r; i++ {
		res.finalState[i] = filtered.AtVec(i)
	}
	return res, nil
}

// variance is the concentrated maximum likelihood estimate of sigma^2
func (res *filterResult) variance() float64 {
	if len(res.innovations) == 0 {
		return 0
	}
	return res.sumScaledSq / float64(len(res.innovations))
}

// logLikelihood is the concentrated Gaussian log-likelihood
func (res *filterResult) logLikelihood() float64 {
	n := float64(len(res.innovations))
	sigma2 := res.variance()
	return -0.5*n*(math.Log(2*math.Pi)+1+math.Log(sigma2)) - 0.5*res.sumLogF
}

// project propagates state h steps with zero future shocks and returns
// the observed component at each step.
func project(transition *mat.Dense, state []float64, h int) []float64 {
	r := len(state)
	current := mat.NewVecDense(r, append([]float64(nil), state...))
	next := mat.NewVecDense(r, nil)
	out := make([]float64, h)
	for i := 0; i < h; i++ {
		next.MulVec(transition, current)
		current, next = next, current
		out[i] = current.AtVec(0)
	}
	return out
}
