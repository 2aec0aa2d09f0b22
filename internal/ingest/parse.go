package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatText Format = "text"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeZip  = "application/zip"
	mimeOLE  = "application/x-ole-storage"
	mimeText = "text/plain"

	maxXLSRows = 100000
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// DetectFormat sniffs the content. The file name is not trusted: the
// template ships as .xls but holds tab separated text.
func DetectFormat(data []byte) (Format, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeXLSX), m.Is(mimeZip):
			return FormatXLSX, nil
		case m.Is(mimeXLS), m.Is(mimeOLE):
			return FormatXLS, nil
		case m.Is(mimeText):
			return FormatText, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
}

// Parse reads the first sheet of data. Zero bytes or a sheet without rows
// give an empty preview rather than an error.
func Parse(fileName string, data []byte) (Preview, error) {
	preview := Preview{FileName: fileName}
	if len(bytes.TrimSpace(data)) == 0 {
		return preview, nil
	}
	format, err := DetectFormat(data)
	if err != nil {
		return preview, err
	}
	preview.Format = format

	var rows []Row
	switch format {
	case FormatXLSX:
		rows, err = parseXLSX(data)
	case FormatXLS:
		rows, err = parseXLS(data)
	default:
		rows, err = parseText(data)
	}
	if err != nil {
		return preview, fmt.Errorf("parse %s: %w", fileName, err)
	}
	preview.Rows, preview.Width = pad(rows)
	return preview, nil
}

func parseXLSX(data []byte) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	raw, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raw))
	for r, values := range raw {
		row := make(Row, len(values))
		for c, value := range values {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			kind, err := file.GetCellType(sheet, axis)
			if err != nil {
				return nil, err
			}
			row[c] = xlsxCell(kind, value)
		}
		rows = append(rows, row)
	}
	return trimTrailingBlank(rows), nil
}

func xlsxCell(kind excelize.CellType, value string) Cell {
	if value == "" {
		return Cell{}
	}
	switch kind {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return TextCell(value)
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate, excelize.CellTypeFormula:
		if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return NumberCell(f)
		}
	}
	return TextCell(value)
}

func parseXLS(data []byte) ([]Row, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, nil
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	var rows []Row
	for i := 0; i <= int(sheet.MaxRow) && i < maxXLSRows; i++ {
		src := sheetRow(sheet, i)
		if src == nil {
			rows = append(rows, Row{})
			continue
		}
		row := make(Row, src.LastCol())
		for c := src.FirstCol(); c < src.LastCol(); c++ {
			row[c] = classify(src.Col(c))
		}
		rows = append(rows, row)
	}
	return trimTrailingBlank(rows), nil
}

// sheetRow returns nil for a row the sheet never wrote. The xls reader
// dereferences missing rows instead of reporting them.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// parseText reads the tab separated template format, falling back to
// commas when the first line has no tab. Text cells are never coerced.
func parseText(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	firstLine, _, _ := strings.Cut(string(data), "\n")

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if strings.Contains(firstLine, "\t") {
		reader.Comma = '\t'
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(record))
		for i, value := range record {
			row[i] = TextCell(value)
		}
		rows = append(rows, row)
	}
	return trimTrailingBlank(rows), nil
}

func trimTrailingBlank(rows []Row) []Row {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func blank(row Row) bool {
	for _, c := range row {
		if c.Kind != CellEmpty {
			return false
		}
	}
	return true
}

// pad makes every row as wide as the widest one.
func pad(rows []Row) ([]Row, int) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make(Row, width-len(row))...)
		}
	}
	return rows, width
}
