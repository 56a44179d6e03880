package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	qb "github.com/riskibarqy/league-rating/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db sqlx.ExtContext
}

var playerSelectColumns = []string{
	"id",
	"name",
	"rating",
	"rd",
	"vol",
	"created_at",
	"updated_at",
}

// NewPlayerRepository accepts either *sqlx.DB or *sqlx.Tx.
func NewPlayerRepository(db sqlx.ExtContext) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	query, args, err := qb.Select("id").From("players").
		Where(qb.Eq("name", player.NormalizeName(name))).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build select player id by name query: %w", err)
	}

	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select player id by name: %w", err)
	}

	return id, true, nil
}

func (r *PlayerRepository) CreateIfAbsent(ctx context.Context, name string) (int64, bool, error) {
	item := player.New(name)
	if err := item.Validate(); err != nil {
		return 0, false, fmt.Errorf("validate player: %w", err)
	}

	insertModel := playerInsertModel{
		Name:   item.Name,
		Rating: item.Rating.Rating,
		RD:     item.Rating.Deviation,
		Vol:    item.Rating.Volatility,
	}
	query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (name) DO NOTHING
RETURNING id`)
	if err != nil {
		return 0, false, fmt.Errorf("build insert player query: %w", err)
	}

	var id int64
	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&id)
	switch {
	case err == nil:
		return id, true, nil
	case isNotFound(err), isUniqueViolation(err):
		// Conflict: the name is already registered.
	default:
		return 0, false, fmt.Errorf("insert player: %w", err)
	}

	id, found, err := r.FindIDByName(ctx, item.Name)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, fmt.Errorf("player %q vanished after insert conflict", item.Name)
	}
	return id, false, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int64) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.EqAny("id", pq.Array(playerIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	return r.selectPlayers(ctx, "select players by ids", query, args)
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	return r.selectPlayers(ctx, "select players", query, args)
}

func (r *PlayerRepository) ListRanked(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy("rating DESC", "name ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ranked players query: %w", err)
	}

	return r.selectPlayers(ctx, "select ranked players", query, args)
}

func (r *PlayerRepository) UpdateRatings(ctx context.Context, ratings map[int64]rating.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(ratings))
	for id := range ratings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return inTx(ctx, r.db, "update player ratings", func(tx sqlx.ExtContext) error {
		for _, id := range ids {
			item := ratings[id]
			if err := item.Validate(); err != nil {
				return fmt.Errorf("validate rating of player %d: %w", id, err)
			}

			query, args, err := qb.Update("players").
				Set("rating", item.Rating).
				Set("rd", item.Deviation).
				Set("vol", item.Volatility).
				Set("updated_at", nowUTC()).
				Where(qb.Eq("id", id)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update player rating query: %w", err)
			}

			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("update rating of player %d: %w", id, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for player %d: %w", id, err)
			}
			if affected == 0 {
				return fmt.Errorf("update rating of player %d: %w", id, player.ErrNotFound)
			}
		}
		return nil
	})
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, op, query string, args []any) ([]player.Player, error) {
	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
