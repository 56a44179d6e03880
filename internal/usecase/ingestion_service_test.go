package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/store"
	"github.com/riskibarqy/league-rating/internal/infrastructure/matchfile"
	"github.com/riskibarqy/league-rating/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/league-rating/internal/mocks/domain/match"
	playermock "github.com/riskibarqy/league-rating/internal/mocks/domain/player"
)

const fiveRowFile = `2024-03-01,Alice,3,1,Bob
2024-03-01,Bob,0,2,Carol
2024-03-02,Carol,1,1,Alice
2024-03-03,Alice,2,0,Carol
2024-03-03,Bob,1,2,Alice
`

type countingRecorder struct {
	matches    int
	newPlayers int
	rated      int
	iterations []int
}

func (r *countingRecorder) MatchesLoaded(n int)                      { r.matches += n }
func (r *countingRecorder) PlayersCreated(n int)                     { r.newPlayers += n }
func (r *countingRecorder) PeriodRated(players int, _ time.Duration) { r.rated += players }
func (r *countingRecorder) SolverIterations(n int)                   { r.iterations = append(r.iterations, n) }

// mockTransactor hands fixed repositories to fn without a real transaction.
type mockTransactor struct {
	repos store.Repositories
}

func (m mockTransactor) InTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	return fn(ctx, m.repos)
}

func TestIngestionService_Load_FiveRowsThreePlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.NewStore()
	recorder := &countingRecorder{}
	service := NewIngestionService(matchfile.NewFactory(matchfile.Options{}), db, recorder, nil)

	summary, err := service.Load(ctx, "week1.csv", strings.NewReader(fiveRowFile), 1)
	require.NoError(t, err)
	require.Equal(t, LoadSummary{RatingPeriod: 1, Matches: 5, NewPlayers: 3}, summary)

	players, err := db.Players().List(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)

	matches, err := db.Matches().ListByPeriod(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 5)
	for _, m := range matches {
		require.Equal(t, 1, m.RatingPeriod)
	}

	summary, err = service.Load(ctx, "week1.csv", strings.NewReader(fiveRowFile), 1)
	require.NoError(t, err)
	require.Equal(t, 5, summary.Matches)
	require.Equal(t, 0, summary.NewPlayers)

	matches, err = db.Matches().ListByPeriod(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 10)

	players, err = db.Players().List(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)

	require.Equal(t, 10, recorder.matches)
	require.Equal(t, 3, recorder.newPlayers)
}

func TestIngestionService_Load_BadRowWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.NewStore()
	service := NewIngestionService(matchfile.NewFactory(matchfile.Options{}), db, nil, nil)

	data := "2024-03-01,Alice,3,1,Bob\n2024-03-01,Dave,x,1,Erin\n"
	_, err := service.Load(ctx, "bad.csv", strings.NewReader(data), 1)
	require.True(t, crerr.Is(err, ErrInvalidInput), "got %v", err)
	require.Contains(t, err.Error(), "line 2")

	players, err := db.Players().List(ctx)
	require.NoError(t, err)
	require.Empty(t, players)
}

func TestIngestionService_Load_NegativePeriod(t *testing.T) {
	t.Parallel()

	service := NewIngestionService(matchfile.NewFactory(matchfile.Options{}), memory.NewStore(), nil, nil)
	_, err := service.Load(context.Background(), "week1.csv", strings.NewReader(fiveRowFile), -1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestionService_LoadEntries_StorageFailureAborts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	tx := mockTransactor{repos: store.Repositories{Players: playerRepo, Matches: matchRepo}}
	service := NewIngestionService(nil, tx, nil, nil)

	storageErr := errors.New("connection reset")
	playerRepo.On("CreateIfAbsent", mock.Anything, "Alice").Return(int64(1), true, nil).Once()
	playerRepo.On("CreateIfAbsent", mock.Anything, "Bob").Return(int64(2), true, nil).Once()
	matchRepo.
		On("Append", mock.Anything, mock.MatchedBy(func(m match.Match) bool {
			return m.Player1ID == 1 && m.Player2ID == 2 && m.RatingPeriod == 7
		})).
		Return(int64(0), storageErr).
		Once()

	_, err := service.LoadEntries(ctx, []match.Entry{
		{Line: 1, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Player1: "Alice", Player2: "Bob", Score1: 1},
		{Line: 2, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Player1: "Bob", Player2: "Alice", Score1: 1},
	}, 7)
	require.ErrorIs(t, err, storageErr)
	require.Contains(t, err.Error(), "line 1")
}

func TestIngestionService_LoadEntries_Empty(t *testing.T) {
	t.Parallel()

	service := NewIngestionService(nil, memory.NewStore(), nil, nil)
	_, err := service.LoadEntries(context.Background(), nil, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
