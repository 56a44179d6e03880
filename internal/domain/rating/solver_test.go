package rating

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveVolatility_GlickmanExample(t *testing.T) {
	t.Parallel()

	res, err := SolveVolatility(VolatilityInput{
		Delta:         -0.4834,
		Phi:           1.1513,
		V:             1.7785,
		Sigma:         0.06,
		Tau:           DefaultTau,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.05999, res.Sigma, 0.00001)
	require.Positive(t, res.Iterations)
}

func TestSolveVolatility_LargeSurpriseRaisesVolatility(t *testing.T) {
	t.Parallel()

	res, err := SolveVolatility(VolatilityInput{
		Delta:         6,
		Phi:           0.3,
		V:             0.5,
		Sigma:         0.06,
		Tau:           1.2,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	})
	require.NoError(t, err)
	require.Greater(t, res.Sigma, 0.06)
}

func TestSolveVolatility_InvalidInput(t *testing.T) {
	t.Parallel()

	base := VolatilityInput{
		Delta:         0.1,
		Phi:           1,
		V:             1,
		Sigma:         0.06,
		Tau:           DefaultTau,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}

	tests := []struct {
		name   string
		mutate func(*VolatilityInput)
	}{
		{name: "nan delta", mutate: func(in *VolatilityInput) { in.Delta = math.NaN() }},
		{name: "infinite variance", mutate: func(in *VolatilityInput) { in.V = math.Inf(1) }},
		{name: "zero sigma", mutate: func(in *VolatilityInput) { in.Sigma = 0 }},
		{name: "zero iterations", mutate: func(in *VolatilityInput) { in.MaxIterations = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := base
			tc.mutate(&in)
			_, err := SolveVolatility(in)
			require.Error(t, err)
		})
	}
}

func TestSolveVolatility_IterationCap(t *testing.T) {
	t.Parallel()

	_, err := SolveVolatility(VolatilityInput{
		Delta:         -0.4834,
		Phi:           1.1513,
		V:             1.7785,
		Sigma:         0.06,
		Tau:           DefaultTau,
		Tolerance:     1e-15,
		MaxIterations: 1,
	})
	if !errors.Is(err, ErrSolverDiverged) {
		t.Fatalf("expected ErrSolverDiverged, got %v", err)
	}
}
