package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

// ErrNotFound is returned by bulk writes that reference an unknown player id.
var ErrNotFound = errors.New("player not found")

// Player is a registered league player with the current Glicko-2 triple.
type Player struct {
	ID     int64
	Name   string
	Rating rating.Rating
}

// New returns an unsaved player carrying the default triple.
func New(name string) Player {
	return Player{
		Name:   NormalizeName(name),
		Rating: rating.Default(),
	}
}

// NormalizeName trims surrounding whitespace. Names are compared exactly after
// normalization.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func (p Player) Validate() error {
	if NormalizeName(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if err := p.Rating.Validate(); err != nil {
		return fmt.Errorf("player %q: %w", p.Name, err)
	}

	return nil
}
