package rating

import (
	"math"

	crerr "github.com/cockroachdb/errors"
)

const (
	DefaultTau           = 0.5
	DefaultTolerance     = 0.000001
	DefaultMaxIterations = 100
)

// VolatilityInput holds the values of step 5 of the Glicko-2 algorithm.
type VolatilityInput struct {
	Delta float64
	Phi   float64
	V     float64
	Sigma float64

	Tau           float64
	Tolerance     float64
	MaxIterations int
}

// VolatilityResult is the converged sigma' and the number of iterations spent
// bracketing and refining it.
type VolatilityResult struct {
	Sigma      float64
	Iterations int
}

// SolveVolatility finds sigma' with the Illinois variant of regula falsi on
//
//	f(x) = e^x(Delta^2 - phi^2 - v - e^x) / 2(phi^2 + v + e^x)^2 - (x - a) / tau^2
//
// where a = ln(sigma^2). Hitting MaxIterations or a non-finite value is an
// error; an unconverged sigma is never returned.
func SolveVolatility(in VolatilityInput) (VolatilityResult, error) {
	if err := in.validate(); err != nil {
		return VolatilityResult{}, err
	}

	phi2 := in.Phi * in.Phi
	delta2 := in.Delta * in.Delta
	tau2 := in.Tau * in.Tau
	a := math.Log(in.Sigma * in.Sigma)

	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi2 + in.V + ex
		return ex*(delta2-phi2-in.V-ex)/(2*d*d) - (x-a)/tau2
	}

	iterations := 0

	A := a
	var B float64
	if delta2 > phi2+in.V {
		B = math.Log(delta2 - phi2 - in.V)
	} else {
		k := 1.0
		for f(a-k*in.Tau) < 0 {
			iterations++
			if iterations >= in.MaxIterations {
				return VolatilityResult{}, crerr.Wrapf(ErrSolverDiverged, "no bracket after %d steps", iterations)
			}
			k++
		}
		B = a - k*in.Tau
	}

	fA := f(A)
	fB := f(B)
	if !isFinite(fA) || !isFinite(fB) {
		return VolatilityResult{}, crerr.Wrapf(ErrSolverDiverged, "non-finite bracket f(A)=%v f(B)=%v", fA, fB)
	}

	for math.Abs(B-A) > in.Tolerance {
		if iterations >= in.MaxIterations {
			return VolatilityResult{}, crerr.Wrapf(ErrSolverDiverged, "|B-A|=%g after %d iterations", math.Abs(B-A), iterations)
		}
		iterations++

		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if !isFinite(C) || !isFinite(fC) {
			return VolatilityResult{}, crerr.Wrapf(ErrSolverDiverged, "non-finite iterate at step %d", iterations)
		}

		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}

	sigma := math.Exp(A / 2)
	if !isFinite(sigma) || sigma <= 0 {
		return VolatilityResult{}, crerr.Wrapf(ErrSolverDiverged, "sigma'=%v", sigma)
	}

	return VolatilityResult{Sigma: sigma, Iterations: iterations}, nil
}

func (in VolatilityInput) validate() error {
	switch {
	case !isFinite(in.Delta), !isFinite(in.Phi), in.Phi < 0:
		return crerr.Wrapf(ErrSolverDiverged, "invalid delta=%v phi=%v", in.Delta, in.Phi)
	case !isFinite(in.V) || in.V <= 0:
		return crerr.Wrapf(ErrSolverDiverged, "invalid variance v=%v", in.V)
	case !isFinite(in.Sigma) || in.Sigma <= 0:
		return crerr.Wrapf(ErrSolverDiverged, "invalid volatility sigma=%v", in.Sigma)
	case in.Tau <= 0 || in.Tolerance <= 0 || in.MaxIterations <= 0:
		return crerr.Newf("invalid solver parameters tau=%v tolerance=%v max_iterations=%d", in.Tau, in.Tolerance, in.MaxIterations)
	}
	return nil
}
