// Package store groups the repositories that must change together.
package store

import (
	"context"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/player"
)

// Repositories are bound to one unit of work.
type Repositories struct {
	Players player.Repository
	Matches match.Repository
}

// Transactor runs fn inside a single transaction. Returning an error from fn
// discards every write made through the given repositories.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
