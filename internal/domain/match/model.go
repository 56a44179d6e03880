package match

import (
	"fmt"
	"time"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

// DateLayout is the on-disk and import format of match dates.
const DateLayout = "2006-01-02"

// Match is one head-to-head series between two players. Score1 and Score2 are
// the number of unit games each side won.
type Match struct {
	ID           int64
	Date         time.Time
	Player1ID    int64
	Player2ID    int64
	Score1       int
	Score2       int
	RatingPeriod int
}

// NormalizeDate truncates t to midnight UTC of its calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (m Match) Validate() error {
	if m.Player1ID == 0 || m.Player2ID == 0 {
		return fmt.Errorf("match players are required")
	}
	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("match player %d cannot play themself", m.Player1ID)
	}
	if m.Score1 < 0 || m.Score2 < 0 {
		return fmt.Errorf("match scores must be non-negative: %d-%d", m.Score1, m.Score2)
	}
	if m.RatingPeriod < 0 {
		return fmt.Errorf("rating period must be non-negative: %d", m.RatingPeriod)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}

	return nil
}

// Result converts the match to the engine's input shape.
func (m Match) Result() rating.Result {
	return rating.Result{
		Player1ID: m.Player1ID,
		Player2ID: m.Player2ID,
		Score1:    m.Score1,
		Score2:    m.Score2,
	}
}

// Participants returns the distinct player ids referenced by matches in first-seen order.
func Participants(matches []Match) []int64 {
	seen := make(map[int64]struct{}, len(matches)*2)
	out := make([]int64, 0, len(matches)*2)
	for _, m := range matches {
		for _, id := range [2]int64{m.Player1ID, m.Player2ID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Entry is an imported match that still names its players. Line is the
// 1-based position in the source file.
type Entry struct {
	Line    int
	Date    time.Time
	Player1 string
	Player2 string
	Score1  int
	Score2  int
}
