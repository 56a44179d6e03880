// Package cli is the ratings command line: print, update, load and migrate.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	ucli "github.com/urfave/cli/v2"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
	"github.com/riskibarqy/league-rating/internal/usecase"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type IngestionUsecase interface {
	Load(ctx context.Context, filename string, r io.Reader, ratingPeriod int) (usecase.LoadSummary, error)
}

type PeriodUsecase interface {
	UpdatePeriod(ctx context.Context, ratingPeriod int, scope rating.Scope) (usecase.PeriodUpdate, error)
}

type RankingUsecase interface {
	Ranking(ctx context.Context) ([]usecase.RankedPlayer, error)
}

// Services are the use cases bound to one opened database.
type Services struct {
	Ingestion IngestionUsecase
	Periods   PeriodUsecase
	Ranking   RankingUsecase
	Close     func() error
}

// Settings are the flag values that decide how services are built.
type Settings struct {
	DatabaseURL string
	HasHeader   bool
}

type ServicesFunc func(ctx context.Context, settings Settings) (*Services, error)

type Options struct {
	Name    string
	Version string

	DefaultDatabase string
	DefaultScope    rating.Scope
	DefaultHeader   bool

	Logger   *logging.Logger
	Services ServicesFunc
	Migrate  func(ctx context.Context, dbURL string) (uint, error)
	// OnSuccess runs after a command completed without error.
	OnSuccess func(ctx context.Context, command string)
}

type App struct {
	opts Options
}

func New(opts Options) *App {
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = "ratings"
	}
	if opts.DefaultScope == "" {
		opts.DefaultScope = rating.ScopeParticipants
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &App{opts: opts}
}

// Run executes args (including the program name) and returns the process exit
// code. Reports go to stdout or --output; errors and hints go to stderr.
func (a *App) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := &run{app: a, stdout: stdout, stderr: stderr, format: FormatText}

	if err := r.cliApp().RunContext(ctx, args); err != nil {
		writeError(stderr, r.format, err)
		return 1
	}
	return 0
}

// run holds the state of a single invocation.
type run struct {
	app    *App
	stdout io.Writer
	stderr io.Writer
	format string
}

func (r *run) cliApp() *ucli.App {
	opts := r.app.opts
	return &ucli.App{
		Name:            opts.Name,
		Usage:           "Glicko-2 ratings for a head-to-head league",
		Version:         opts.Version,
		Writer:          r.stdout,
		ErrWriter:       r.stderr,
		HideHelpCommand: true,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "database URL",
				Value:   opts.DefaultDatabase,
			},
			&ucli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write reports to `FILE` instead of stdout",
			},
			&ucli.StringFlag{
				Name:  "format",
				Usage: "report format: text or json",
				Value: FormatText,
			},
		},
		Before: func(c *ucli.Context) error {
			format := strings.ToLower(strings.TrimSpace(c.String("format")))
			if format != FormatText && format != FormatJSON {
				return usageError(crerr.WithHint(
					crerr.Newf("unknown format %q", c.String("format")),
					"use --format text or --format json",
				))
			}
			r.format = format
			return nil
		},
		Action: func(c *ucli.Context) error {
			if c.Args().Present() {
				return usageError(crerr.WithHint(
					crerr.Newf("unknown command %q", c.Args().First()),
					"available commands: print, update, load, migrate",
				))
			}
			return usageError(crerr.WithHint(crerr.New("a command is required"), "run with --help to list commands"))
		},
		OnUsageError: func(_ *ucli.Context, err error, _ bool) error {
			return usageError(err)
		},
		ExitErrHandler: func(*ucli.Context, error) {},
		Commands: []*ucli.Command{
			r.printCommand(),
			r.updateCommand(),
			r.loadCommand(),
			r.migrateCommand(),
		},
	}
}

func usageError(err error) error {
	return crerr.Mark(err, usecase.ErrInvalidInput)
}

// onCommandUsageError reports a negative number the flag parser took for a
// flag ("update -1") as the rating period it was meant to be.
func onCommandUsageError(_ *ucli.Context, err error, _ bool) error {
	if name, ok := strings.CutPrefix(err.Error(), "flag provided but not defined: "); ok {
		if n, convErr := strconv.Atoi(name); convErr == nil && n < 0 {
			_, periodErr := parsePeriod(name)
			return periodErr
		}
	}
	return usageError(err)
}

func expectArgs(c *ucli.Context, n int, usage string) error {
	if c.NArg() == n {
		return nil
	}
	return usageError(crerr.WithHint(
		fmt.Errorf("%s expects %d argument(s), got %d", c.Command.Name, n, c.NArg()),
		"usage: "+usage,
	))
}
