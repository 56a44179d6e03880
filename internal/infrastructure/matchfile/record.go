// Package matchfile reads match result files. Each row holds
//
//	date (YYYY-MM-DD), player1, score1, score2, player2
//
// and is validated before any of it reaches storage.
package matchfile

import (
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

const columnCount = 5

// ErrMalformed marks every parse and validation failure of a match file.
var ErrMalformed = crerr.New("malformed match file")

// record is one row as validated before conversion to a match.Entry. Line is
// the 1-based line of the file (or sheet row) the record came from.
type record struct {
	Line    int
	Date    time.Time `validate:"required"`
	Player1 string    `validate:"required,max=200"`
	Score1  int       `validate:"gte=0"`
	Score2  int       `validate:"gte=0"`
	Player2 string    `validate:"required,max=200,nefield=Player1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// row is the raw cells of one record and the 1-based line it starts on.
type row struct {
	line  int
	cells []string
}

// parseRows converts raw rows into entries. The first row is the header when
// hasHeader is set. Blank rows are skipped.
func parseRows(rows []row, hasHeader bool) ([]match.Entry, error) {
	out := make([]match.Entry, 0, len(rows))
	for i, r := range rows {
		if hasHeader && i == 0 {
			continue
		}
		if isBlank(r.cells) {
			continue
		}

		rec, err := parseRow(r.cells, r.line)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.entry())
	}

	if len(out) == 0 {
		return nil, crerr.Wrap(ErrMalformed, "file contains no match rows")
	}
	return out, nil
}

func parseRow(row []string, line int) (record, error) {
	cells := trimTrailingBlanks(row)
	if len(cells) != columnCount {
		return record{}, lineErrorf(line, "expected %d columns, got %d", columnCount, len(cells))
	}

	date, err := time.Parse(match.DateLayout, strings.TrimSpace(cells[0]))
	if err != nil {
		return record{}, lineErrorf(line, "invalid date %q: want YYYY-MM-DD", cells[0])
	}
	score1, err := parseScore(cells[2])
	if err != nil {
		return record{}, lineErrorf(line, "invalid score1: %v", err)
	}
	score2, err := parseScore(cells[3])
	if err != nil {
		return record{}, lineErrorf(line, "invalid score2: %v", err)
	}

	rec := record{
		Line:    line,
		Date:    match.NormalizeDate(date),
		Player1: strings.TrimSpace(cells[1]),
		Score1:  score1,
		Score2:  score2,
		Player2: strings.TrimSpace(cells[4]),
	}
	if err := validate.Struct(rec); err != nil {
		return record{}, lineErrorf(line, "%s", describeValidation(err))
	}

	return rec, nil
}

func (r record) entry() match.Entry {
	return match.Entry{
		Line:    r.Line,
		Date:    r.Date,
		Player1: r.Player1,
		Player2: r.Player2,
		Score1:  r.Score1,
		Score2:  r.Score2,
	}
}

func parseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, crerr.Newf("%q is not an integer", raw)
	}
	if value < 0 {
		return 0, crerr.Newf("%d is negative", value)
	}
	return value, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !crerr.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fe.Field())+" is required")
		case "nefield":
			parts = append(parts, "a player cannot play themself")
		default:
			parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

func lineErrorf(line int, format string, args ...any) error {
	err := crerr.Wrapf(ErrMalformed, "line %d: "+format, append([]any{line}, args...)...)
	return crerr.WithHint(err, "rows must look like: 2024-03-01,Alice,3,1,Bob")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimTrailingBlanks(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
