package matchfile

import (
	"io"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-rating/internal/domain/match"
)

// Parser turns a match file into validated entries.
type Parser interface {
	Parse(r io.Reader) ([]match.Entry, error)
}

// Options control how rows are read.
type Options struct {
	// HasHeader skips the first row of the file.
	HasHeader bool
}

// Factory picks a parser from the file extension.
type Factory struct {
	opts Options
}

func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts}
}

func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv", ".txt", "":
		return NewCSVParser(f.opts), nil
	case ".xlsx":
		return NewXLSXParser(f.opts), nil
	default:
		err := crerr.Wrapf(ErrMalformed, "unsupported file type %q", ext)
		return nil, crerr.WithHint(err, "use a .csv or .xlsx file")
	}
}

// ParseFile picks the parser for filename and reads r with it.
func (f *Factory) ParseFile(filename string, r io.Reader) ([]match.Entry, error) {
	parser, err := f.GetParser(filename)
	if err != nil {
		return nil, err
	}
	return parser.Parse(r)
}
