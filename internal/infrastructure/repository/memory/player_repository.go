package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

type PlayerRepository struct {
	store *Store
	tx    *dataset
}

func (r *PlayerRepository) FindIDByName(_ context.Context, name string) (int64, bool, error) {
	var (
		id    int64
		found bool
	)
	_ = r.store.view(r.tx, func(d *dataset) error {
		id, found = d.idByName[player.NormalizeName(name)]
		return nil
	})
	return id, found, nil
}

func (r *PlayerRepository) CreateIfAbsent(_ context.Context, name string) (int64, bool, error) {
	item := player.New(name)
	if err := item.Validate(); err != nil {
		return 0, false, fmt.Errorf("validate player: %w", err)
	}

	var (
		id      int64
		created bool
	)
	err := r.store.view(r.tx, func(d *dataset) error {
		if existing, ok := d.idByName[item.Name]; ok {
			id = existing
			return nil
		}
		item.ID = d.nextPlayerID
		d.nextPlayerID++
		d.players[item.ID] = item
		d.idByName[item.Name] = item.ID
		id, created = item.ID, true
		return nil
	})
	return id, created, err
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []int64) ([]player.Player, error) {
	out := make([]player.Player, 0, len(playerIDs))
	_ = r.store.view(r.tx, func(d *dataset) error {
		seen := make(map[int64]struct{}, len(playerIDs))
		for _, id := range playerIDs {
			p, ok := d.players[id]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	out := r.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) ListRanked(_ context.Context) ([]player.Player, error) {
	out := r.snapshot()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Rating.Rating != b.Rating.Rating {
			return a.Rating.Rating > b.Rating.Rating
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *PlayerRepository) UpdateRatings(_ context.Context, ratings map[int64]rating.Rating) error {
	return r.store.view(r.tx, func(d *dataset) error {
		for id, item := range ratings {
			if _, ok := d.players[id]; !ok {
				return fmt.Errorf("update rating of player %d: %w", id, player.ErrNotFound)
			}
			if err := item.Validate(); err != nil {
				return fmt.Errorf("validate rating of player %d: %w", id, err)
			}
		}
		for id, item := range ratings {
			p := d.players[id]
			p.Rating = item
			d.players[id] = p
		}
		return nil
	})
}

func (r *PlayerRepository) snapshot() []player.Player {
	var out []player.Player
	_ = r.store.view(r.tx, func(d *dataset) error {
		out = make([]player.Player, 0, len(d.players))
		for _, p := range d.players {
			out = append(out, p)
		}
		return nil
	})
	return out
}
