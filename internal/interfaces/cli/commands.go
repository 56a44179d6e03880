package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	ucli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/league-rating/internal/domain/rating"
)

var cliTracer = otel.Tracer("league-rating/internal/interfaces/cli")

func (r *run) printCommand() *ucli.Command {
	return &ucli.Command{
		Name:         "print",
		Usage:        "print the ranking of every registered player",
		OnUsageError: onCommandUsageError,
		Action: r.action(func(ctx context.Context, c *ucli.Context) error {
			if err := expectArgs(c, 0, "print"); err != nil {
				return err
			}
			return r.withServices(ctx, c, func(svc *Services) error {
				ranking, err := svc.Ranking.Ranking(ctx)
				if err != nil {
					return err
				}
				out, err := renderRanking(r.format, ranking)
				if err != nil {
					return err
				}
				return r.writeReport(c, out)
			})
		}),
	}
}

func (r *run) updateCommand() *ucli.Command {
	return &ucli.Command{
		Name:         "update",
		Usage:        "apply one rating period to the registry",
		ArgsUsage:    "<period>",
		OnUsageError: onCommandUsageError,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:  "scope",
				Usage: "players to rate: participants or registry",
				Value: string(r.app.opts.DefaultScope),
			},
		},
		Action: r.action(func(ctx context.Context, c *ucli.Context) error {
			if err := expectArgs(c, 1, "update <period>"); err != nil {
				return err
			}
			period, err := parsePeriod(c.Args().Get(0))
			if err != nil {
				return err
			}
			scope, err := rating.ParseScope(c.String("scope"))
			if err != nil {
				return usageError(err)
			}

			return r.withServices(ctx, c, func(svc *Services) error {
				update, err := svc.Periods.UpdatePeriod(ctx, period, scope)
				if err != nil {
					return err
				}
				out, err := renderUpdate(r.format, update)
				if err != nil {
					return err
				}
				return r.writeReport(c, out)
			})
		}),
	}
}

func (r *run) loadCommand() *ucli.Command {
	return &ucli.Command{
		Name:         "load",
		Usage:        "append the matches of a CSV or XLSX file to a rating period",
		ArgsUsage:    "<file> <period>",
		OnUsageError: onCommandUsageError,
		Flags: []ucli.Flag{
			&ucli.BoolFlag{
				Name:  "header",
				Usage: "skip the first row of the file",
				Value: r.app.opts.DefaultHeader,
			},
		},
		Action: r.action(func(ctx context.Context, c *ucli.Context) error {
			if err := expectArgs(c, 2, "load <file> <period>"); err != nil {
				return err
			}
			path := c.Args().Get(0)
			period, err := parsePeriod(c.Args().Get(1))
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return usageError(crerr.WithHint(fmt.Errorf("open match file: %w", err), "check the file path"))
			}
			defer f.Close()

			return r.withServices(ctx, c, func(svc *Services) error {
				summary, err := svc.Ingestion.Load(ctx, filepath.Base(path), f, period)
				if err != nil {
					return err
				}
				out, err := renderLoad(r.format, summary)
				if err != nil {
					return err
				}
				_, err = r.stdout.Write(out)
				return err
			})
		}),
	}
}

func (r *run) migrateCommand() *ucli.Command {
	return &ucli.Command{
		Name:         "migrate",
		Usage:        "create or upgrade the database schema",
		OnUsageError: onCommandUsageError,
		Action: r.action(func(ctx context.Context, c *ucli.Context) error {
			if err := expectArgs(c, 0, "migrate"); err != nil {
				return err
			}
			if r.app.opts.Migrate == nil {
				return crerr.New("migrations are not available for this backend")
			}
			version, err := r.app.opts.Migrate(ctx, c.String("database"))
			if err != nil {
				return err
			}
			out, err := renderMigrate(r.format, version)
			if err != nil {
				return err
			}
			_, err = r.stdout.Write(out)
			return err
		}),
	}
}

// action wraps a command body in a root span and reports success.
func (r *run) action(fn func(ctx context.Context, c *ucli.Context) error) ucli.ActionFunc {
	return func(c *ucli.Context) error {
		name := c.Command.Name
		ctx, span := cliTracer.Start(c.Context, "cli."+name,
			trace.WithAttributes(attribute.String("format", r.format)),
		)
		err := fn(ctx, c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if err == nil && r.app.opts.OnSuccess != nil {
			r.app.opts.OnSuccess(ctx, name)
		}
		return err
	}
}

func (r *run) withServices(ctx context.Context, c *ucli.Context, fn func(svc *Services) error) (err error) {
	if r.app.opts.Services == nil {
		return crerr.New("no storage backend configured")
	}
	svc, err := r.app.opts.Services(ctx, Settings{
		DatabaseURL: c.String("database"),
		HasHeader:   c.Bool("header"),
	})
	if err != nil {
		return err
	}
	if svc.Close != nil {
		defer func() {
			if closeErr := svc.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close database: %w", closeErr)
			}
		}()
	}
	return fn(svc)
}

// writeReport writes out to --output when set, stdout otherwise. The file is
// only created once the report exists, so a failed command leaves it alone.
func (r *run) writeReport(c *ucli.Context, out []byte) error {
	path := strings.TrimSpace(c.String("output"))
	if path == "" {
		_, err := r.stdout.Write(out)
		return err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return crerr.WithHint(fmt.Errorf("write report: %w", err), "check the --output path")
	}
	r.app.opts.Logger.Debug("report written", "path", path, "bytes", len(out))
	return nil
}

func parsePeriod(raw string) (int, error) {
	period, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || period < 0 {
		return 0, usageError(crerr.WithHint(
			crerr.Newf("invalid rating period %q", raw),
			"a rating period is a non-negative integer",
		))
	}
	return period, nil
}
