package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/domain/store"
)

func TestPlayerRepository_CreateIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Players()

	id, created, err := repo.CreateIfAbsent(ctx, "  Alice ")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(1), id)

	again, created, err := repo.CreateIfAbsent(ctx, "Alice")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, id, again)

	_, _, err = repo.CreateIfAbsent(ctx, "   ")
	require.Error(t, err)

	got, err := repo.GetByIDs(ctx, []int64{id, 42, id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rating.Default(), got[0].Rating)
}

func TestPlayerRepository_ListRankedOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Players()
	ids := map[string]int64{}
	for _, name := range []string{"Carol", "Bob", "Alice", "Dave"} {
		id, _, err := repo.CreateIfAbsent(ctx, name)
		require.NoError(t, err)
		ids[name] = id
	}

	require.NoError(t, repo.UpdateRatings(ctx, map[int64]rating.Rating{
		ids["Carol"]: {Rating: 1550, Deviation: 100, Volatility: 0.06},
		ids["Dave"]:  {Rating: 1600, Deviation: 100, Volatility: 0.06},
	}))

	ranked, err := repo.ListRanked(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(ranked))
	for _, p := range ranked {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"Dave", "Carol", "Alice", "Bob"}, names)
}

func TestPlayerRepository_UpdateRatingsUnknownID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Players()
	id, _, err := repo.CreateIfAbsent(ctx, "Alice")
	require.NoError(t, err)

	err = repo.UpdateRatings(ctx, map[int64]rating.Rating{
		id: {Rating: 1700, Deviation: 50, Volatility: 0.06},
		77: rating.Default(),
	})
	require.ErrorIs(t, err, player.ErrNotFound)

	got, err := repo.GetByIDs(ctx, []int64{id})
	require.NoError(t, err)
	require.Equal(t, rating.Default(), got[0].Rating)
}

func TestMatchRepository_AppendAndListByPeriod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	players := s.Players()
	matches := s.Matches()
	a, _, _ := players.CreateIfAbsent(ctx, "Alice")
	b, _, _ := players.CreateIfAbsent(ctx, "Bob")
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	first, err := matches.Append(ctx, match.Match{Date: day, Player1ID: a, Player2ID: b, Score1: 1, RatingPeriod: 3})
	require.NoError(t, err)
	_, err = matches.Append(ctx, match.Match{Date: day, Player1ID: b, Player2ID: a, Score1: 2, RatingPeriod: 4})
	require.NoError(t, err)
	second, err := matches.Append(ctx, match.Match{Date: day, Player1ID: b, Player2ID: a, Score2: 2, RatingPeriod: 3})
	require.NoError(t, err)

	_, err = matches.Append(ctx, match.Match{Date: day, Player1ID: a, Player2ID: 99, RatingPeriod: 3})
	require.Error(t, err)

	got, err := matches.ListByPeriod(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, []int64{first, second}, []int64{got[0].ID, got[1].ID})

	empty, err := matches.ListByPeriod(ctx, 9)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStore_InTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		a, _, err := repos.Players.CreateIfAbsent(ctx, "Alice")
		if err != nil {
			return err
		}
		b, _, err := repos.Players.CreateIfAbsent(ctx, "Bob")
		if err != nil {
			return err
		}
		if _, err := repos.Matches.Append(ctx, match.Match{Date: time.Now(), Player1ID: a, Player2ID: b, Score1: 1, RatingPeriod: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.Players().List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	err = s.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		_, _, err := repos.Players.CreateIfAbsent(ctx, "Alice")
		return err
	})
	require.NoError(t, err)

	all, err = s.Players().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, int64(1), all[0].ID)
}
