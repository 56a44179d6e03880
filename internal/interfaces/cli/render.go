package cli

import (
	"math"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/league-rating/internal/usecase"
)

type rankingReport struct {
	Ranking []usecase.RankedPlayer `json:"ranking"`
}

type migrateReport struct {
	SchemaVersion uint `json:"schema_version"`
}

// renderRanking writes the "# Ranking" block, one "rank: name — rating±rd"
// line per player.
func renderRanking(format string, ranking []usecase.RankedPlayer) ([]byte, error) {
	if format == FormatJSON {
		if ranking == nil {
			ranking = []usecase.RankedPlayer{}
		}
		return marshalJSON(rankingReport{Ranking: ranking})
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("# Ranking\n```\n")
	for _, row := range ranking {
		buf.WriteString(strconv.Itoa(row.Rank))
		buf.WriteString(": ")
		buf.WriteString(row.Name)
		buf.WriteString(" — ")
		writeTriple(buf, row.Rating.Rating, row.Rating.Deviation)
		buf.WriteByte('\n')
	}
	buf.WriteString("```\n")
	return copyBytes(buf), nil
}

// renderUpdate writes the "# Rating Update" block with old and new values.
func renderUpdate(format string, update usecase.PeriodUpdate) ([]byte, error) {
	if format == FormatJSON {
		if update.Changes == nil {
			update.Changes = []usecase.RatingChange{}
		}
		return marshalJSON(update)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("# Rating Update\n```\n")
	for _, change := range update.Changes {
		buf.WriteString(change.Name)
		buf.WriteString(" — ")
		writeTriple(buf, change.Prior.Rating, change.Prior.Deviation)
		buf.WriteString(" → ")
		writeTriple(buf, change.Posterior.Rating, change.Posterior.Deviation)
		buf.WriteByte('\n')
	}
	buf.WriteString("```\n")
	return copyBytes(buf), nil
}

func renderLoad(format string, summary usecase.LoadSummary) ([]byte, error) {
	if format == FormatJSON {
		return marshalJSON(summary)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("loaded ")
	buf.WriteString(strconv.Itoa(summary.Matches))
	buf.WriteString(" matches (")
	buf.WriteString(strconv.Itoa(summary.NewPlayers))
	buf.WriteString(" new players) for period ")
	buf.WriteString(strconv.Itoa(summary.RatingPeriod))
	buf.WriteByte('\n')
	return copyBytes(buf), nil
}

func renderMigrate(format string, version uint) ([]byte, error) {
	if format == FormatJSON {
		return marshalJSON(migrateReport{SchemaVersion: version})
	}
	return []byte("schema at version " + strconv.FormatUint(uint64(version), 10) + "\n"), nil
}

func writeTriple(buf *bytebufferpool.ByteBuffer, value, deviation float64) {
	buf.WriteString(formatRounded(value))
	buf.WriteString("±")
	buf.WriteString(formatRounded(deviation))
}

// formatRounded rounds half away from zero and drops the fraction.
func formatRounded(x float64) string {
	return strconv.FormatFloat(math.Round(x)+0, 'f', -1, 64)
}

func marshalJSON(v any) ([]byte, error) {
	out, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func copyBytes(buf *bytebufferpool.ByteBuffer) []byte {
	return append([]byte(nil), buf.B...)
}
