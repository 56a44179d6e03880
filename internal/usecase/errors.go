package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

var (
	// ErrInvalidInput covers bad files, dates, scores and period labels.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIntegrity means stored data contradicts itself, e.g. a match that
	// references an unregistered player. It points at a bug, not at user input.
	ErrIntegrity = errors.New("data integrity violation")
	// ErrNumerical means the rating math could not produce a trustworthy value.
	ErrNumerical = errors.New("numerical failure")
)

// classifyRatingError marks engine errors with their use-case class. Use
// crerr.Is to test for the class.
func classifyRatingError(err error) error {
	switch {
	case err == nil:
		return nil
	case crerr.Is(err, rating.ErrSolverDiverged):
		return crerr.WithHint(crerr.Mark(err, ErrNumerical), "try a smaller GLICKO_TAU or a larger GLICKO_MAX_ITERATIONS")
	case crerr.Is(err, rating.ErrUnregisteredPlayer),
		crerr.Is(err, rating.ErrSelfMatch),
		crerr.Is(err, rating.ErrInvalidResult):
		return crerr.Mark(err, ErrIntegrity)
	default:
		return err
	}
}
