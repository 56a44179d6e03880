package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatch_Validate(t *testing.T) {
	t.Parallel()

	valid := Match{
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Player1ID:    1,
		Player2ID:    2,
		Score1:       3,
		Score2:       1,
		RatingPeriod: 1,
	}
	require.NoError(t, valid.Validate())

	selfMatch := valid
	selfMatch.Player2ID = 1
	require.Error(t, selfMatch.Validate())

	negative := valid
	negative.Score2 = -1
	require.Error(t, negative.Validate())

	undated := valid
	undated.Date = time.Time{}
	require.Error(t, undated.Validate())
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("WIB", 7*3600)
	got := NormalizeDate(time.Date(2024, 3, 1, 23, 30, 0, 0, loc))
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParticipants(t *testing.T) {
	t.Parallel()

	got := Participants([]Match{
		{Player1ID: 3, Player2ID: 1},
		{Player1ID: 1, Player2ID: 2},
		{Player1ID: 2, Player2ID: 3},
	})
	require.Equal(t, []int64{3, 1, 2}, got)
}
