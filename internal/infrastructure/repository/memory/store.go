package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/store"
)

// dataset is the full in-memory state. Transactions work on a clone and swap
// it in on commit.
type dataset struct {
	players      map[int64]player.Player
	idByName     map[string]int64
	matches      []match.Match
	nextPlayerID int64
	nextMatchID  int64
}

func newDataset() *dataset {
	return &dataset{
		players:      make(map[int64]player.Player),
		idByName:     make(map[string]int64),
		nextPlayerID: 1,
		nextMatchID:  1,
	}
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		players:      make(map[int64]player.Player, len(d.players)),
		idByName:     make(map[string]int64, len(d.idByName)),
		matches:      append([]match.Match(nil), d.matches...),
		nextPlayerID: d.nextPlayerID,
		nextMatchID:  d.nextMatchID,
	}
	for id, p := range d.players {
		out.players[id] = p
	}
	for name, id := range d.idByName {
		out.idByName[name] = id
	}
	return out
}

// Store is a process-local database for both repositories.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

// view runs fn against the committed state, or against tx when non-nil.
func (s *Store) view(tx *dataset, fn func(d *dataset) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Players() *PlayerRepository {
	return &PlayerRepository{store: s}
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{store: s}
}

// InTx holds the store lock for the duration of fn. Repositories obtained
// outside fn must not be used inside it.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	repos := store.Repositories{
		Players: &PlayerRepository{store: s, tx: work},
		Matches: &MatchRepository{store: s, tx: work},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	s.data = work
	return nil
}
