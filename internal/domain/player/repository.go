package player

import (
	"context"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

// Repository describes player registry persistence needs from use cases.
type Repository interface {
	FindIDByName(ctx context.Context, name string) (int64, bool, error)
	CreateIfAbsent(ctx context.Context, name string) (int64, bool, error)
	GetByIDs(ctx context.Context, playerIDs []int64) ([]Player, error)
	List(ctx context.Context) ([]Player, error)
	// ListRanked orders by rating descending, then name and id ascending.
	ListRanked(ctx context.Context) ([]Player, error)
	// UpdateRatings writes every triple or fails with ErrNotFound on an unknown id.
	UpdateRatings(ctx context.Context, ratings map[int64]rating.Rating) error
}
