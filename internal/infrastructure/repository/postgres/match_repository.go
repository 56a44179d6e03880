package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-rating/internal/domain/match"
	qb "github.com/riskibarqy/league-rating/internal/platform/querybuilder"
)

type MatchRepository struct {
	db sqlx.ExtContext
}

var matchSelectColumns = []string{
	"id",
	"player_1",
	"player_2",
	"score1",
	"score2",
	"date",
	"rating_period",
}

func NewMatchRepository(db sqlx.ExtContext) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Append(ctx context.Context, item match.Match) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("validate match: %w", err)
	}

	insertModel := matchInsertModel{
		Player1ID:    item.Player1ID,
		Player2ID:    item.Player2ID,
		Score1:       item.Score1,
		Score2:       item.Score2,
		Date:         match.NormalizeDate(item.Date),
		RatingPeriod: item.RatingPeriod,
	}
	query, args, err := qb.InsertModel("matches", insertModel, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert match query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}

	return id, nil
}

func (r *MatchRepository) ListByPeriod(ctx context.Context, ratingPeriod int) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Eq("rating_period", ratingPeriod)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by period query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by period: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
