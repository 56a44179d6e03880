package match

import "context"

// Repository describes the append-only match log.
type Repository interface {
	Append(ctx context.Context, item Match) (int64, error)
	// ListByPeriod returns the period's matches in insertion order.
	ListByPeriod(ctx context.Context, ratingPeriod int) ([]Match, error)
}
