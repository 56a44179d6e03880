//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/domain/store"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ratings"),
		tcpostgres.WithUsername("ratings"),
		tcpostgres.WithPassword("ratings"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = Migrate(ctx, db)
	require.NoError(t, err)
	// Applying twice is a no-op.
	version, err := Migrate(ctx, db)
	require.NoError(t, err)
	require.EqualValues(t, 1771800100, version)

	// The migration connection goes back to the pool and the pool stays open.
	require.Zero(t, db.Stats().InUse)
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestRepositories_Integration(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	players := NewPlayerRepository(db)
	matches := NewMatchRepository(db)

	aliceID, created, err := players.CreateIfAbsent(ctx, " Alice ")
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := players.CreateIfAbsent(ctx, "Alice")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, aliceID, again)

	bobID, _, err := players.CreateIfAbsent(ctx, "Bob")
	require.NoError(t, err)
	carolID, _, err := players.CreateIfAbsent(ctx, gofakeit.Name())
	require.NoError(t, err)

	found, ok, err := players.FindIDByName(ctx, "Bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bobID, found)

	_, ok, err = players.FindIDByName(ctx, "nobody")
	require.NoError(t, err)
	require.False(t, ok)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	firstID, err := matches.Append(ctx, match.Match{Date: day, Player1ID: aliceID, Player2ID: bobID, Score1: 3, Score2: 1, RatingPeriod: 1})
	require.NoError(t, err)
	secondID, err := matches.Append(ctx, match.Match{Date: day, Player1ID: bobID, Player2ID: carolID, Score1: 0, Score2: 2, RatingPeriod: 1})
	require.NoError(t, err)
	_, err = matches.Append(ctx, match.Match{Date: day, Player1ID: aliceID, Player2ID: carolID, Score1: 1, RatingPeriod: 2})
	require.NoError(t, err)

	got, err := matches.ListByPeriod(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, firstID, got[0].ID)
	require.Equal(t, secondID, got[1].ID)
	require.Equal(t, day, got[0].Date)

	err = players.UpdateRatings(ctx, map[int64]rating.Rating{
		aliceID: {Rating: 1600, Deviation: 200, Volatility: 0.06},
		bobID:   {Rating: 1550, Deviation: 210, Volatility: 0.06},
	})
	require.NoError(t, err)

	ranked, err := players.ListRanked(ctx)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	require.Equal(t, []int64{aliceID, bobID, carolID}, []int64{ranked[0].ID, ranked[1].ID, ranked[2].ID})

	err = players.UpdateRatings(ctx, map[int64]rating.Rating{
		aliceID: {Rating: 1, Deviation: 1, Volatility: 0.01},
		99999:   rating.Default(),
	})
	require.True(t, errors.Is(err, player.ErrNotFound), "got %v", err)

	byIDs, err := players.GetByIDs(ctx, []int64{aliceID, 99999})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	require.Equal(t, 1600.0, byIDs[0].Rating.Rating, "failed bulk update must not leave partial writes")
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	tx := NewTransactor(db)
	boom := errors.New("boom")

	err := tx.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if _, _, err := repos.Players.CreateIfAbsent(ctx, "Dora"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := NewPlayerRepository(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	err = tx.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		_, _, err := repos.Players.CreateIfAbsent(ctx, "Dora")
		return err
	})
	require.NoError(t, err)

	all, err = NewPlayerRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
