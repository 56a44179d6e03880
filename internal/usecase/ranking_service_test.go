package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/league-rating/internal/mocks/domain/player"
)

func TestRankingService_Ranking_OrdersByRating(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.NewStore()
	ids := map[string]int64{}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		id, _, err := db.Players().CreateIfAbsent(ctx, name)
		require.NoError(t, err)
		ids[name] = id
	}
	require.NoError(t, db.Players().UpdateRatings(ctx, map[int64]rating.Rating{
		ids["Alice"]: {Rating: 1600, Deviation: 100, Volatility: 0.06},
		ids["Bob"]:   {Rating: 1500, Deviation: 100, Volatility: 0.06},
		ids["Carol"]: {Rating: 1550, Deviation: 100, Volatility: 0.06},
	}))

	got, err := NewRankingService(db.Players()).Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct {
		rank   int
		name   string
		rating float64
	}{
		{1, "Alice", 1600},
		{2, "Carol", 1550},
		{3, "Bob", 1500},
	}
	for i, w := range want {
		require.Equal(t, w.rank, got[i].Rank)
		require.Equal(t, w.name, got[i].Name)
		require.Equal(t, w.rating, got[i].Rating.Rating)
	}
}

func TestRankingService_Ranking_RepositoryError(t *testing.T) {
	t.Parallel()

	repo := playermock.NewRepository(t)
	repoErr := errors.New("db down")
	repo.On("ListRanked", mock.Anything).Return([]player.Player(nil), repoErr).Once()

	_, err := NewRankingService(repo).Ranking(context.Background())
	require.ErrorIs(t, err, repoErr)
}
