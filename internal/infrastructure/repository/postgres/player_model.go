package postgres

import (
	"time"

	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

type playerTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Rating    float64   `db:"rating"`
	RD        float64   `db:"rd"`
	Vol       float64   `db:"vol"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type playerInsertModel struct {
	Name   string  `db:"name"`
	Rating float64 `db:"rating"`
	RD     float64 `db:"rd"`
	Vol    float64 `db:"vol"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:   m.ID,
		Name: m.Name,
		Rating: rating.Rating{
			Rating:     m.Rating,
			Deviation:  m.RD,
			Volatility: m.Vol,
		},
	}
}
