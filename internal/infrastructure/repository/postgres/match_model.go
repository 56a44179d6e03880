package postgres

import (
	"time"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

type matchTableModel struct {
	ID           int64     `db:"id"`
	Player1ID    int64     `db:"player_1"`
	Player2ID    int64     `db:"player_2"`
	Score1       int       `db:"score1"`
	Score2       int       `db:"score2"`
	Date         time.Time `db:"date"`
	RatingPeriod int       `db:"rating_period"`
}

type matchInsertModel struct {
	Player1ID    int64     `db:"player_1"`
	Player2ID    int64     `db:"player_2"`
	Score1       int       `db:"score1"`
	Score2       int       `db:"score2"`
	Date         time.Time `db:"date"`
	RatingPeriod int       `db:"rating_period"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:           m.ID,
		Date:         match.NormalizeDate(m.Date),
		Player1ID:    m.Player1ID,
		Player2ID:    m.Player2ID,
		Score1:       m.Score1,
		Score2:       m.Score2,
		RatingPeriod: m.RatingPeriod,
	}
}
