package rating

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrUnregisteredPlayer means a result references a player missing from the prior snapshot.
	ErrUnregisteredPlayer = crerr.New("player not present in prior ratings")
	// ErrSelfMatch means both sides of a result are the same player.
	ErrSelfMatch = crerr.New("player cannot play themself")
	// ErrInvalidResult covers negative scores and malformed triples.
	ErrInvalidResult = crerr.New("invalid result")
	// ErrSolverDiverged is returned when the volatility iteration does not converge.
	ErrSolverDiverged = crerr.New("volatility solver did not converge")
)

func errInvalidTriple(field string, value float64) error {
	return crerr.Wrapf(ErrInvalidResult, "%s out of range: %v", field, value)
}
