package matchfile

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFactory_GetParser(t *testing.T) {
	t.Parallel()

	factory := NewFactory(Options{})
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "week1.csv", want: "csv"},
		{name: "upper case extension", filename: "WEEK1.CSV", want: "csv"},
		{name: "no extension", filename: "matches", want: "csv"},
		{name: "xlsx file", filename: "week1.xlsx", want: "xlsx"},
		{name: "unsupported file", filename: "week1.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := parser.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			}
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		"2024-03-01,Alice,3,1,Bob",
		"2024-03-01, Bob ,0,2,Carol",
		"",
		"2024-03-02,Carol,1,1,Alice",
		"2024-03-03,Alice,2,0,Carol",
		"2024-03-03,Bob,1,2,Alice",
	}, "\n")

	entries, err := NewCSVParser(Options{}).Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	first := entries[0]
	require.Equal(t, 1, first.Line)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	require.Equal(t, "Alice", first.Player1)
	require.Equal(t, 3, first.Score1)
	require.Equal(t, 1, first.Score2)
	require.Equal(t, "Bob", first.Player2)

	require.Equal(t, "Bob", entries[1].Player1)
	require.Equal(t, 4, entries[2].Line)
}

func TestCSVParser_Header(t *testing.T) {
	t.Parallel()

	data := "date,player1,score1,score2,player2\n2024-03-01,Alice,3,1,Bob\n"

	entries, err := NewCSVParser(Options{HasHeader: true}).Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 2, entries[0].Line)

	_, err = NewCSVParser(Options{}).Parse(strings.NewReader(data))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestCSVParser_RejectsBadRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantLine string
	}{
		{name: "bad date", data: "2024-02-30,Alice,1,0,Bob", wantLine: "line 1"},
		{name: "non numeric score", data: "2024-03-01,Alice,3,1,Bob\n2024-03-01,Alice,x,1,Bob", wantLine: "line 2"},
		{name: "negative score", data: "2024-03-01,Alice,-1,1,Bob", wantLine: "line 1"},
		{name: "self match", data: "2024-03-01,Alice,1,0,Alice", wantLine: "line 1"},
		{name: "missing player", data: "2024-03-01,,1,0,Bob", wantLine: "line 1"},
		{name: "too few columns", data: "2024-03-01,Alice,1,0", wantLine: "line 1"},
		{name: "too many columns", data: "2024-03-01,Alice,1,0,Bob,extra", wantLine: "line 1"},
		{name: "row after blank lines", data: "2024-03-01,Alice,3,1,Bob\n\n\n2024-03-01,Bob,x,2,Carol", wantLine: "line 4:"},
		{name: "row after quoted newline", data: "2024-03-01,\"Alice\nSmith\",3,1,Bob\n2024-03-01,Bob,1,1,Bob", wantLine: "line 3:"},
		{name: "empty file", data: "", wantLine: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries, err := NewCSVParser(Options{}).Parse(strings.NewReader(tt.data))
			require.Nil(t, entries)
			require.ErrorIs(t, err, ErrMalformed)
			require.Contains(t, err.Error(), tt.wantLine)
		})
	}
}

func TestCSVParser_ErrorCarriesHint(t *testing.T) {
	t.Parallel()

	_, err := NewCSVParser(Options{}).Parse(strings.NewReader("yesterday,Alice,1,0,Bob"))
	require.Error(t, err)
	require.NotEmpty(t, crerr.FlattenHints(err))
}

func TestXLSXParser_Parse(t *testing.T) {
	t.Parallel()

	faker := gofakeit.New(42)
	names := []string{faker.FirstName() + " A", faker.FirstName() + " B", faker.FirstName() + " C"}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"date", "player1", "score1", "score2", "player2"},
		{"2024-03-01", names[0], "3", "1", names[1]},
		{"2024-03-01", names[1], "0", "2", names[2]},
		{"2024-03-02", names[2], "1", "1", names[0]},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	entries, err := NewXLSXParser(Options{HasHeader: true}).Parse(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, rec := range entries {
		require.Equal(t, i+2, rec.Line, fmt.Sprintf("record %d", i))
	}
	require.Equal(t, names[0], entries[0].Player1)
	require.Equal(t, names[1], entries[0].Player2)
	require.Equal(t, 3, entries[0].Score1)
}

func TestXLSXParser_RejectsNonWorkbook(t *testing.T) {
	t.Parallel()

	_, err := NewXLSXParser(Options{}).Parse(strings.NewReader("2024-03-01,Alice,3,1,Bob"))
	require.ErrorIs(t, err, ErrMalformed)
}
