package matchfile

import (
	"encoding/csv"
	"errors"
	"io"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

type CSVParser struct {
	opts Options
}

func NewCSVParser(opts Options) *CSVParser {
	return &CSVParser{opts: opts}
}

func (p *CSVParser) Parse(r io.Reader) ([]match.Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// encoding/csv drops blank lines, so the record index is not the line.
	var rows []row
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, crerr.Wrapf(ErrMalformed, "read csv: %v", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, cells: cells})
	}

	return parseRows(rows, p.opts.HasHeader)
}
