package rating

import (
	"math"
	"sort"

	crerr "github.com/cockroachdb/errors"
)

// Result is one match record as seen by the engine: two players and the number
// of unit games each side won.
type Result struct {
	Player1ID int64
	Player2ID int64
	Score1    int
	Score2    int
}

// Outcome is the engine's answer for one player in scope.
type Outcome struct {
	Prior      Rating
	Posterior  Rating
	Games      int
	Iterations int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTau sets the system constant tau.
func WithTau(tau float64) Option {
	return func(e *Engine) {
		if tau > 0 {
			e.tau = tau
		}
	}
}

// WithTolerance sets the convergence tolerance of the volatility solver.
func WithTolerance(tolerance float64) Option {
	return func(e *Engine) {
		if tolerance > 0 {
			e.tolerance = tolerance
		}
	}
}

// WithMaxIterations caps the volatility solver.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithMaxDeviation sets the public-scale ceiling for posterior deviations.
// Zero disables the ceiling.
func WithMaxDeviation(deviation float64) Option {
	return func(e *Engine) {
		if deviation >= 0 {
			e.maxDeviation = deviation
		}
	}
}

// Engine computes rating periods. It holds configuration only.
type Engine struct {
	tau           float64
	tolerance     float64
	maxIterations int
	maxDeviation  float64
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tau:           DefaultTau,
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
		maxDeviation:  DefaultDeviation,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// series is every unit game a player had against one opponent in one result.
// The games share the opponent's pre-period rating, so they share g and E.
type series struct {
	mu     float64
	g      float64
	wins   int
	losses int
}

func (s series) games() int { return s.wins + s.losses }

// ComputePeriod returns one Outcome per key of priors. The keys are the period
// scope: every player referenced by results must be present, and players in
// priors without games take the no-games branch.
func (e *Engine) ComputePeriod(priors map[int64]Rating, results []Result) (map[int64]Outcome, error) {
	played, err := expandGames(priors, results)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(priors))
	for id := range priors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[int64]Outcome, len(priors))
	for _, id := range ids {
		prior := priors[id]
		posterior, iterations, err := e.rate(prior, played[id])
		if err != nil {
			return nil, crerr.Wrapf(err, "rate player %d", id)
		}
		out[id] = Outcome{
			Prior:      prior,
			Posterior:  posterior,
			Games:      countGames(played[id]),
			Iterations: iterations,
		}
	}

	return out, nil
}

// expandGames turns every result into Score1 wins and Score2 losses for
// player 1 and the mirror image for player 2, each against the opponent's
// prior rating. A 0-0 result contributes nothing.
func expandGames(priors map[int64]Rating, results []Result) (map[int64][]series, error) {
	played := make(map[int64][]series, len(priors))
	for i, r := range results {
		if r.Player1ID == r.Player2ID {
			return nil, crerr.Wrapf(ErrSelfMatch, "result %d: player %d", i, r.Player1ID)
		}
		if r.Score1 < 0 || r.Score2 < 0 {
			return nil, crerr.Wrapf(ErrInvalidResult, "result %d: negative score %d-%d", i, r.Score1, r.Score2)
		}
		p1, ok := priors[r.Player1ID]
		if !ok {
			return nil, crerr.Wrapf(ErrUnregisteredPlayer, "result %d: player %d", i, r.Player1ID)
		}
		p2, ok := priors[r.Player2ID]
		if !ok {
			return nil, crerr.Wrapf(ErrUnregisteredPlayer, "result %d: player %d", i, r.Player2ID)
		}
		if err := p1.Validate(); err != nil {
			return nil, crerr.Wrapf(err, "prior of player %d", r.Player1ID)
		}
		if err := p2.Validate(); err != nil {
			return nil, crerr.Wrapf(err, "prior of player %d", r.Player2ID)
		}

		if r.Score1+r.Score2 == 0 {
			continue
		}
		played[r.Player1ID] = append(played[r.Player1ID], against(p2, r.Score1, r.Score2))
		played[r.Player2ID] = append(played[r.Player2ID], against(p1, r.Score2, r.Score1))
	}
	return played, nil
}

func against(opponent Rating, wins, losses int) series {
	mu, phi := opponent.Internal()
	return series{mu: mu, g: impact(phi), wins: wins, losses: losses}
}

func countGames(played []series) int {
	n := 0
	for _, s := range played {
		n += s.games()
	}
	return n
}

// rate applies steps 2-8 of the algorithm to a single player. It also returns
// the number of solver iterations spent.
func (e *Engine) rate(prior Rating, played []series) (Rating, int, error) {
	if err := prior.Validate(); err != nil {
		return Rating{}, 0, err
	}

	mu, phi := prior.Internal()
	sigma := prior.Volatility

	if len(played) == 0 {
		relaxed := prior
		relaxed.Deviation = math.Sqrt(phi*phi+sigma*sigma) * Scale
		return e.bound(prior, relaxed), 0, nil
	}

	// Each unit game adds g^2 E(1-E) to the information and g(score-E) to the
	// improvement, so a series adds those terms times its game counts.
	var information, improvement float64
	for _, s := range played {
		ex := expectedScore(mu, s.mu, s.g)
		wins, losses := float64(s.wins), float64(s.losses)
		information += (wins + losses) * s.g * s.g * ex * (1 - ex)
		improvement += wins*s.g*(1-ex) - losses*s.g*ex
	}

	v := 1 / information
	if !isFinite(v) {
		return Rating{}, 0, crerr.Wrapf(ErrSolverDiverged, "estimated variance is not finite over %d games", countGames(played))
	}
	delta := v * improvement

	res, err := SolveVolatility(VolatilityInput{
		Delta:         delta,
		Phi:           phi,
		V:             v,
		Sigma:         sigma,
		Tau:           e.tau,
		Tolerance:     e.tolerance,
		MaxIterations: e.maxIterations,
	})
	if err != nil {
		return Rating{}, 0, err
	}

	phiStar := math.Sqrt(phi*phi + res.Sigma*res.Sigma)
	phiPrime := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muPrime := mu + phiPrime*phiPrime*improvement

	return e.bound(prior, FromInternal(muPrime, phiPrime, res.Sigma)), res.Iterations, nil
}

// bound caps the posterior deviation at the ceiling, or at the prior deviation
// when a player already sits above it.
func (e *Engine) bound(prior, posterior Rating) Rating {
	if e.maxDeviation <= 0 {
		return posterior
	}
	ceiling := math.Max(e.maxDeviation, prior.Deviation)
	posterior.Deviation = math.Min(posterior.Deviation, ceiling)
	return posterior
}
