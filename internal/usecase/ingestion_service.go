package usecase

import (
	"context"
	"fmt"
	"io"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-rating/internal/domain/match"
	"github.com/riskibarqy/league-rating/internal/domain/store"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
)

// MatchFileParser reads a match file into entries. The filename selects the
// format.
type MatchFileParser interface {
	ParseFile(filename string, r io.Reader) ([]match.Entry, error)
}

// LoadSummary describes one committed ingestion.
type LoadSummary struct {
	RatingPeriod int `json:"rating_period"`
	Matches      int `json:"matches"`
	NewPlayers   int `json:"new_players"`
}

type IngestionService struct {
	parser   MatchFileParser
	tx       store.Transactor
	recorder Recorder
	logger   *logging.Logger
}

func NewIngestionService(parser MatchFileParser, tx store.Transactor, recorder Recorder, logger *logging.Logger) *IngestionService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		parser:   parser,
		tx:       tx,
		recorder: recorder,
		logger:   logger,
	}
}

// Load parses the whole file before touching storage, then registers unseen
// players and appends every match in one transaction.
func (s *IngestionService) Load(ctx context.Context, filename string, r io.Reader, ratingPeriod int) (summary LoadSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Load",
		attribute.String("file", filename),
		attribute.Int("rating_period", ratingPeriod),
	)
	defer func() { endSpan(span, err) }()

	if ratingPeriod < 0 {
		return LoadSummary{}, fmt.Errorf("%w: rating period must be non-negative, got %d", ErrInvalidInput, ratingPeriod)
	}

	entries, err := s.parser.ParseFile(filename, r)
	if err != nil {
		return LoadSummary{}, crerr.Mark(crerr.Wrapf(err, "parse %s", filename), ErrInvalidInput)
	}

	return s.LoadEntries(ctx, entries, ratingPeriod)
}

// LoadEntries stores already parsed entries. No deduplication is done: loading
// the same entries twice appends them twice.
func (s *IngestionService) LoadEntries(ctx context.Context, entries []match.Entry, ratingPeriod int) (LoadSummary, error) {
	if ratingPeriod < 0 {
		return LoadSummary{}, fmt.Errorf("%w: rating period must be non-negative, got %d", ErrInvalidInput, ratingPeriod)
	}
	if len(entries) == 0 {
		return LoadSummary{}, fmt.Errorf("%w: no matches to load", ErrInvalidInput)
	}

	summary := LoadSummary{RatingPeriod: ratingPeriod}
	err := s.tx.InTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		summary.Matches, summary.NewPlayers = 0, 0
		ids := make(map[string]int64)

		resolve := func(name string) (int64, error) {
			if id, ok := ids[name]; ok {
				return id, nil
			}
			id, created, err := repos.Players.CreateIfAbsent(ctx, name)
			if err != nil {
				return 0, fmt.Errorf("register player %q: %w", name, err)
			}
			if created {
				summary.NewPlayers++
			}
			ids[name] = id
			return id, nil
		}

		for _, entry := range entries {
			player1ID, err := resolve(entry.Player1)
			if err != nil {
				return err
			}
			player2ID, err := resolve(entry.Player2)
			if err != nil {
				return err
			}

			item := match.Match{
				Date:         match.NormalizeDate(entry.Date),
				Player1ID:    player1ID,
				Player2ID:    player2ID,
				Score1:       entry.Score1,
				Score2:       entry.Score2,
				RatingPeriod: ratingPeriod,
			}
			if err := item.Validate(); err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrInvalidInput, entry.Line, err)
			}
			if _, err := repos.Matches.Append(ctx, item); err != nil {
				return fmt.Errorf("append match from line %d: %w", entry.Line, err)
			}
			summary.Matches++
		}
		return nil
	})
	if err != nil {
		return LoadSummary{}, err
	}

	s.recorder.MatchesLoaded(summary.Matches)
	s.recorder.PlayersCreated(summary.NewPlayers)
	s.logger.InfoContext(ctx, "matches loaded",
		"rating_period", ratingPeriod,
		"matches", summary.Matches,
		"new_players", summary.NewPlayers,
	)

	return summary, nil
}
