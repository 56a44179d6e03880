package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-rating/internal/config"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
	"github.com/riskibarqy/league-rating/internal/platform/metrics"
)

func testConfig() config.Config {
	return config.Config{
		ServiceName:         "league-rating",
		ServiceVersion:      "test",
		DBURL:               "memory://",
		GlickoTau:           rating.DefaultTau,
		GlickoTolerance:     rating.DefaultTolerance,
		GlickoMaxIterations: rating.DefaultMaxIterations,
		GlickoMaxDeviation:  rating.DefaultDeviation,
		RatingPeriodScope:   rating.ScopeParticipants,
		ImportHasHeader:     true,
	}
}

func runCLI(t *testing.T, cfg config.Config, recorder *metrics.Manager, db *memory.Store, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := NewCLI(cfg, logging.NewNop(), recorder, MemoryOpener(db)).
		Run(context.Background(), append([]string{"ratings"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestNewCLI_MemoryBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	recorder := metrics.NewManager()
	db := memory.NewStore()

	path := filepath.Join(t.TempDir(), "week1.csv")
	data := "date,player1,score1,score2,player2\n2024-03-01,Alice,3,1,Bob\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write match file: %v", err)
	}

	code, stdout, stderr := runCLI(t, cfg, recorder, db, "load", path, "1")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "loaded 1 matches (2 new players) for period 1\n", stdout)

	code, _, stderr = runCLI(t, cfg, recorder, db, "update", "1")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr = runCLI(t, cfg, recorder, db, "print")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "# Ranking\n```\n1: Alice — 1668±209\n2: Bob — 1332±209\n```\n", stdout)

	count, err := testutil.GatherAndCount(recorder.Registry(), "league_rating_last_success_timestamp_seconds")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestNewCLI_ConfigDefaultsReachCommands(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RatingPeriodScope = rating.ScopeRegistry
	db := memory.NewStore()

	_, _, err := db.Players().CreateIfAbsent(context.Background(), "Carol")
	require.NoError(t, err)

	// Registry scope relaxes Carol although the period has no matches.
	code, stdout, stderr := runCLI(t, cfg, metrics.NewManager(), db, "update", "7")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "# Rating Update\n```\nCarol — 1500±350 → 1500±350\n```\n", stdout)
}

func TestNewCLI_FailedCommandRecordsNothing(t *testing.T) {
	t.Parallel()

	recorder := metrics.NewManager()
	code, stdout, stderr := runCLI(t, testConfig(), recorder, memory.NewStore(), "update", "abc")
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "invalid rating period")

	count, err := testutil.GatherAndCount(recorder.Registry(), "league_rating_last_success_timestamp_seconds")
	require.NoError(t, err)
	require.Zero(t, count)
}
