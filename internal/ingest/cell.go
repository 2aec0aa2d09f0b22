// Package ingest turns an uploaded leave spreadsheet into an advisory
// preview and forwards the untouched file to the import endpoint.
package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	default:
		return "empty"
	}
}

// Cell is one spreadsheet value. A number parsed out of text keeps that
// text in Text, and it is what gets displayed.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

func (c Cell) Display() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

type Row []Cell

func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Display()
	}
	return out
}

// Preview is the parsed first sheet, header row included.
type Preview struct {
	FileName string
	Format   Format
	Rows     []Row
	Width    int
}

func (p Preview) Empty() bool { return len(p.Rows) == 0 }

func (p Preview) Header() Row {
	if len(p.Rows) == 0 {
		return nil
	}
	return p.Rows[0]
}

func (p Preview) Body() []Row {
	if len(p.Rows) < 2 {
		return nil
	}
	return p.Rows[1:]
}

// TSV renders the preview tab separated, one row per line.
func (p Preview) TSV() string {
	var b strings.Builder
	for _, row := range p.Rows {
		b.WriteString(strings.Join(row.Strings(), "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// decimalLiteral matches plain numbers. Leading zeros, exponents and the
// Inf/NaN spellings stay text.
var decimalLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// numberCell returns raw as a number cell when it is a finite decimal literal.
func numberCell(raw string) (Cell, bool) {
	trimmed := strings.TrimSpace(raw)
	if !decimalLiteral.MatchString(trimmed) {
		return Cell{}, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Cell{}, false
	}
	return Cell{Kind: CellNumber, Text: trimmed, Number: f}, true
}

// classify types a raw value when the source format gives no cell type.
func classify(raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Cell{}
	}
	if c, ok := numberCell(raw); ok {
		return c
	}
	return TextCell(raw)
}
