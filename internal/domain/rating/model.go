// Package rating implements the Glicko-2 rating-period update used by the league.
//
// Variable names follow Mark E. Glickman's paper (https://www.glicko.net/glicko/glicko2.pdf):
//   - Mu, Phi: rating and rating deviation on the Glicko-2 internal scale.
//   - Sigma: rating volatility.
//   - Tau: system constant constraining the change in volatility per period.
//   - v: estimated variance of the player's rating based only on game outcomes.
//   - Delta: estimated improvement in rating over the period.
//
// Everything in this package is pure computation; persistence lives behind the
// player and match repositories.
package rating

import "math"

const (
	// Scale converts between the public 1500-centered scale and the internal scale.
	Scale = 173.7178

	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
)

// Rating is a player's public Glicko-2 triple.
type Rating struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// Default returns the triple assigned to newly registered players.
func Default() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Internal returns mu and phi on the Glicko-2 scale.
func (r Rating) Internal() (mu, phi float64) {
	return (r.Rating - DefaultRating) / Scale, r.Deviation / Scale
}

// FromInternal converts mu, phi and sigma back to the public scale.
func FromInternal(mu, phi, sigma float64) Rating {
	return Rating{
		Rating:     mu*Scale + DefaultRating,
		Deviation:  phi * Scale,
		Volatility: sigma,
	}
}

func (r Rating) Validate() error {
	if !isFinite(r.Rating) {
		return errInvalidTriple("rating", r.Rating)
	}
	if !isFinite(r.Deviation) || r.Deviation < 0 {
		return errInvalidTriple("deviation", r.Deviation)
	}
	if !isFinite(r.Volatility) || r.Volatility <= 0 {
		return errInvalidTriple("volatility", r.Volatility)
	}
	return nil
}

// impact is g(phi): it damps the weight of games against uncertain opponents.
func impact(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// expectedScore is E(mu, mu_j, phi_j) with g(phi_j) precomputed.
func expectedScore(mu, opponentMu, g float64) float64 {
	return 1 / (1 + math.Exp(-g*(mu-opponentMu)))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
