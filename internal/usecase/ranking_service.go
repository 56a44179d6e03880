package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

// RankedPlayer is one row of the ranking. Rank starts at 1.
type RankedPlayer struct {
	Rank     int           `json:"rank"`
	PlayerID int64         `json:"player_id"`
	Name     string        `json:"name"`
	Rating   rating.Rating `json:"rating"`
}

type RankingService struct {
	playerRepo player.Repository
}

func NewRankingService(playerRepo player.Repository) *RankingService {
	return &RankingService{playerRepo: playerRepo}
}

// Ranking lists every registered player by rating descending. Equal ratings
// are ordered by name, then id, and still get distinct ranks.
func (s *RankingService) Ranking(ctx context.Context) (out []RankedPlayer, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Ranking")
	defer func() { endSpan(span, err) }()

	players, err := s.playerRepo.ListRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ranked players: %w", err)
	}

	out = make([]RankedPlayer, 0, len(players))
	for i, p := range players {
		out = append(out, RankedPlayer{
			Rank:     i + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			Rating:   p.Rating,
		})
	}
	return out, nil
}
