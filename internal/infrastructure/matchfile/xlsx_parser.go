package matchfile

import (
	"io"

	crerr "github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

// XLSXParser reads the first sheet of a workbook.
type XLSXParser struct {
	opts Options
}

func NewXLSXParser(opts Options) *XLSXParser {
	return &XLSXParser{opts: opts}
}

func (p *XLSXParser) Parse(r io.Reader) ([]match.Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		wrapped := crerr.Wrapf(ErrMalformed, "open xlsx: %v", err)
		return nil, crerr.WithHint(wrapped, "if this is a CSV file, give it a .csv extension")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, crerr.Wrap(ErrMalformed, "xlsx has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, crerr.Wrapf(ErrMalformed, "read sheet %q: %v", sheets[0], err)
	}

	// GetRows keeps empty rows, so the index is the sheet row.
	rows := make([]row, len(cells))
	for i, c := range cells {
		rows[i] = row{line: i + 1, cells: c}
	}
	return parseRows(rows, p.opts.HasHeader)
}
