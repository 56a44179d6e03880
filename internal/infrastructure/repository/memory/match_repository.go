package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

type MatchRepository struct {
	store *Store
	tx    *dataset
}

func (r *MatchRepository) Append(_ context.Context, item match.Match) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("validate match: %w", err)
	}

	var id int64
	err := r.store.view(r.tx, func(d *dataset) error {
		for _, playerID := range [2]int64{item.Player1ID, item.Player2ID} {
			if _, ok := d.players[playerID]; !ok {
				return fmt.Errorf("insert match: unknown player %d", playerID)
			}
		}
		item.ID = d.nextMatchID
		item.Date = match.NormalizeDate(item.Date)
		d.nextMatchID++
		d.matches = append(d.matches, item)
		id = item.ID
		return nil
	})
	return id, err
}

func (r *MatchRepository) ListByPeriod(_ context.Context, ratingPeriod int) ([]match.Match, error) {
	out := make([]match.Match, 0)
	_ = r.store.view(r.tx, func(d *dataset) error {
		for _, m := range d.matches {
			if m.RatingPeriod == ratingPeriod {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, nil
}
