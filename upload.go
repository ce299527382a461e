package dividends

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned when an uploaded table lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// column aliases, compared after fold.
var (
	tickerColumns = []string{"ticker", "symbol", "ativo", "codigo", "acao"}
	weightColumns = []string{"peso", "weight", "allocation", "alocacao"}
	nameColumns   = []string{"name", "company", "companhia", "empresa", "nome"}
	sectorColumns = []string{"sector", "setor"}
)

// RowError describes a rejected row of an uploaded table.
type RowError struct {
	Row    int // 1-based line number, the header being line 1
	Ticker string
	Reason string
}

func (e RowError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Ticker, e.Reason)
}

// Upload is the result of parsing an uploaded portfolio.
type Upload struct {
	Portfolio *Portfolio
	// Rejected rows, in file order.
	Rejected []RowError
}

// UploadError is returned when a table cannot produce a portfolio. It
// carries the rejected rows, if any.
type UploadError struct {
	Rejected []RowError
	Err      error
}

func (e *UploadError) Error() string {
	if len(e.Rejected) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (%d rejected rows)", e.Err, len(e.Rejected))
}

func (e *UploadError) Unwrap() error { return e.Err }

// ParseUpload reads a portfolio table.
//
// Spreadsheets (.xlsx) are read from their first sheet, any other file is
// read as delimited text where the delimiter (comma, semicolon or tab) is
// guessed from the header line.
//
// The table must have a ticker and a weight column. Rows whose weight is
// not a positive number are rejected and reported, the other rows make the
// portfolio. Weights may use a decimal comma and a trailing '%'.
func ParseUpload(r io.Reader, filename string) (*Upload, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		records, err = readSpreadsheet(r)
	} else {
		records, err = readDelimited(r)
	}
	if err != nil {
		return nil, &UploadError{Err: fmt.Errorf("cannot read %q: %w", filename, err)}
	}
	return parseRecords(records)
}

func readSpreadsheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheet")
	}
	return f.GetRows(sheets[0])
}

func readDelimited(r io.Reader) ([][]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = sniffDelimiter(content)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// sniffDelimiter returns the most frequent delimiter in the first line.
func sniffDelimiter(content []byte) rune {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	best, count := ',', 0
	for _, d := range []rune{';', '\t', ','} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}

func parseRecords(records [][]string) (*Upload, error) {
	if len(records) == 0 {
		return nil, &UploadError{Err: fmt.Errorf("%w: empty table", ErrMissingColumn)}
	}
	header := records[0]
	tickerCol, weightCol := findColumn(header, tickerColumns), findColumn(header, weightColumns)
	nameCol, sectorCol := findColumn(header, nameColumns), findColumn(header, sectorColumns)
	if tickerCol < 0 {
		return nil, &UploadError{Err: fmt.Errorf("%w: ticker (one of %s)", ErrMissingColumn, strings.Join(tickerColumns, ", "))}
	}
	if weightCol < 0 {
		return nil, &UploadError{Err: fmt.Errorf("%w: weight (one of %s)", ErrMissingColumn, strings.Join(weightColumns, ", "))}
	}

	var (
		positions []Position
		rejected  []RowError
		seen      = make(map[string]bool)
	)
	for i, rec := range records[1:] {
		row := i + 2
		if blank(rec) {
			continue
		}
		ticker := NormalizeTicker(cell(rec, tickerCol))
		if ticker == "" {
			rejected = append(rejected, RowError{Row: row, Reason: "missing ticker"})
			continue
		}
		w, err := ParseWeight(cell(rec, weightCol))
		if err != nil {
			rejected = append(rejected, RowError{Row: row, Ticker: ticker, Reason: err.Error()})
			continue
		}
		if seen[ticker] {
			rejected = append(rejected, RowError{Row: row, Ticker: ticker, Reason: "duplicate ticker"})
			continue
		}
		seen[ticker] = true
		positions = append(positions, Position{
			Ticker: ticker,
			Name:   strings.TrimSpace(cell(rec, nameCol)),
			Sector: strings.TrimSpace(cell(rec, sectorCol)),
			Weight: w,
		})
	}

	p, err := NewPortfolio(positions)
	if err != nil {
		return nil, &UploadError{Rejected: rejected, Err: err}
	}
	return &Upload{Portfolio: p, Rejected: rejected}, nil
}

// ParseWeight parses a strictly positive weight like "0.25", "0,25", "25" or "25%".
// Percentages are returned as fractions.
func ParseWeight(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing weight")
	}
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if strings.Contains(s, ",") {
		// decimal comma, dots are thousand separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	if pct {
		d = d.Shift(-2)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("weight must be positive, got %s", d)
	}
	return d.InexactFloat64(), nil
}

// fold lower cases s and removes the Portuguese accents.
var fold = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e", "í", "i",
	"ó", "o", "ô", "o", "õ", "o", "ú", "u", "ç", "c",
)

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		name := fold.Replace(strings.ToLower(strings.TrimSpace(h)))
		for _, a := range aliases {
			if name == a {
				return i
			}
		}
	}
	return -1
}

func cell(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return rec[col]
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
