package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/domain/store"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
)

// RatingChange is one player's before and after triple for a period.
type RatingChange struct {
	PlayerID  int64         `json:"player_id"`
	Name      string        `json:"name"`
	Prior     rating.Rating `json:"prior"`
	Posterior rating.Rating `json:"posterior"`
	Games     int           `json:"games"`
}

// PeriodUpdate is the committed result of one rating period. Changes are
// ordered by posterior rating descending, then name and id.
type PeriodUpdate struct {
	RatingPeriod int            `json:"rating_period"`
	Scope        rating.Scope   `json:"scope"`
	Matches      int            `json:"matches"`
	Changes      []RatingChange `json:"changes"`
}

type RatingPeriodService struct {
	tx       store.Transactor
	engine   *rating.Engine
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewRatingPeriodService(tx store.Transactor, engine *rating.Engine, recorder Recorder, logger *logging.Logger) *RatingPeriodService {
	if engine == nil {
		engine = rating.NewEngine()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RatingPeriodService{
		tx:       tx,
		engine:   engine,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// UpdatePeriod computes the period from the current registry triples and
// writes every posterior in the same transaction that read the priors.
//
// With ScopeParticipants only players appearing in the period's matches are
// rated, and a period without matches changes nothing. With ScopeRegistry
// every registered player is rated; those without games get the deviation
// relaxation.
func (s *RatingPeriodService) UpdatePeriod(ctx context.Context, ratingPeriod int, scope rating.Scope) (update PeriodUpdate, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingPeriodService.UpdatePeriod",
		attribute.Int("rating_period", ratingPeriod),
		attribute.String("scope", scope.String()),
	)
	defer func() { endSpan(span, err) }()

	if ratingPeriod < 0 {
		return PeriodUpdate{}, fmt.Errorf("%w: rating period must be non-negative, got %d", ErrInvalidInput, ratingPeriod)
	}
	if scope == "" {
		scope = rating.ScopeParticipants
	}
	if scope != rating.ScopeParticipants && scope != rating.ScopeRegistry {
		return PeriodUpdate{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, scope)
	}

	started := s.now()
	var outcomes map[int64]rating.Outcome
	err = s.tx.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		matches, err := repos.Matches.ListByPeriod(ctx, ratingPeriod)
		if err != nil {
			return fmt.Errorf("list matches of period %d: %w", ratingPeriod, err)
		}

		update = PeriodUpdate{RatingPeriod: ratingPeriod, Scope: scope, Matches: len(matches)}
		if len(matches) == 0 && scope == rating.ScopeParticipants {
			return nil
		}

		players, err := s.playersInScope(ctx, repos.Players, matches, scope)
		if err != nil {
			return err
		}

		priors := make(map[int64]rating.Rating, len(players))
		names := make(map[int64]string, len(players))
		for _, p := range players {
			priors[p.ID] = p.Rating
			names[p.ID] = p.Name
		}

		results := make([]rating.Result, 0, len(matches))
		for _, m := range matches {
			results = append(results, m.Result())
		}

		outcomes, err = s.engine.ComputePeriod(priors, results)
		if err != nil {
			return crerr.Wrapf(classifyRatingError(err), "compute period %d", ratingPeriod)
		}

		posteriors := make(map[int64]rating.Rating, len(outcomes))
		for id, outcome := range outcomes {
			posteriors[id] = outcome.Posterior
		}
		if err := repos.Players.UpdateRatings(ctx, posteriors); err != nil {
			if crerr.Is(err, player.ErrNotFound) {
				return crerr.Mark(err, ErrIntegrity)
			}
			return fmt.Errorf("write ratings of period %d: %w", ratingPeriod, err)
		}

		update.Changes = changesFrom(outcomes, names)
		return nil
	})
	if err != nil {
		return PeriodUpdate{}, err
	}

	if update.Matches == 0 {
		s.logger.WarnContext(ctx, "rating period has no matches",
			"rating_period", ratingPeriod,
			"scope", scope.String(),
			"rated_players", len(update.Changes),
		)
	}

	for _, outcome := range outcomes {
		if outcome.Games > 0 {
			s.recorder.SolverIterations(outcome.Iterations)
		}
	}
	s.recorder.PeriodRated(len(update.Changes), s.now().Sub(started))
	s.logger.InfoContext(ctx, "rating period applied",
		"rating_period", ratingPeriod,
		"scope", scope.String(),
		"matches", update.Matches,
		"rated_players", len(update.Changes),
	)

	return update, nil
}

func (s *RatingPeriodService) playersInScope(ctx context.Context, repo player.Repository, matches []match.Match, scope rating.Scope) ([]player.Player, error) {
	if scope == rating.ScopeRegistry {
		players, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list registry: %w", err)
		}
		return players, nil
	}

	players, err := repo.GetByIDs(ctx, match.Participants(matches))
	if err != nil {
		return nil, fmt.Errorf("get period participants: %w", err)
	}
	return players, nil
}

func changesFrom(outcomes map[int64]rating.Outcome, names map[int64]string) []RatingChange {
	out := make([]RatingChange, 0, len(outcomes))
	for id, outcome := range outcomes {
		out = append(out, RatingChange{
			PlayerID:  id,
			Name:      names[id],
			Prior:     outcome.Prior,
			Posterior: outcome.Posterior,
			Games:     outcome.Games,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Posterior.Rating != b.Posterior.Rating {
			return a.Posterior.Rating > b.Posterior.Rating
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	return out
}
