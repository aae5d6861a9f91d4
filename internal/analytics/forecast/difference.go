package forecast

// differencingPolynomial returns the coefficients c of
// (1-B)^d (1-B^s)^D in ascending powers of B, with c[0] = 1.
func differencingPolynomial(d, seasonalD, period int) []float64 {
	poly := []float64{1}
	for i := 0; i < d; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	if seasonalD > 0 && period > 0 {
		lag := make([]float64, period+1)
		lag[0], lag[period] = 1, -1
		for i := 0; i < seasonalD; i++ {
			poly = polyMul(poly, lag)
		}
	}
	return poly
}

// polyMul multiplies two polynomials given in ascending powers
func polyMul(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// applyDifferencing computes w_t = sum_k poly[k] * y_{t-k}. The result is
// len(poly)-1 shorter than values; nil if values is too short.
func applyDifferencing(values, poly []float64) []float64 {
	m := len(poly) - 1
	if len(values) <= m {
		return nil
	}
	out := make([]float64, len(values)-m)
	for i := range out {
		t := i + m
		sum := 0.0
		for k, c := range poly {
			if c != 0 {
				sum += c * values[t-k]
			}
		}
		out[i] = sum
	}
	return out
}

// integrate inverts applyDifferencing for values that follow history:
// y_t = w_t - sum_{k>=1} poly[k] * y_{t-k}.
func integrate(history, w, poly []float64) []float64 {
	ext := make([]float64, len(history), len(history)+len(w))
	copy(ext, history)
	for _, wt := range w {
		t := len(ext)
		y := wt
		for k := 1; k < len(poly); k++ {
			if poly[k] != 0 {
				y -= poly[k] * ext[t-k]
			}
		}
		ext = append(ext, y)
	}
	return ext[len(history):]
}
