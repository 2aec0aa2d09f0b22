// Package report exports the analytics page currently on screen.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/leavedesk/internal/leave"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PDFContentType  = "application/pdf"

	sheetName = "Analitica"
)

var columns = []string{"ID", "Nombre", "Email", "Lider", "Dias", "Progreso"}

func WriteXLSX(w io.Writer, rows []leave.AnalyticsRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		return fmt.Errorf("percent style: %w", err)
	}

	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.ID, row.Name, row.Email, row.LeaderName, float64(row.TotalDays), row.Percentage()}
		if err := f.SetSheetRow(sheetName, axis, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		progress, _ := excelize.CoordinatesToCellName(len(columns), i+2)
		if err := f.SetCellStyle(sheetName, progress, progress, percent); err != nil {
			return fmt.Errorf("percent style: %w", err)
		}
	}
	if err := f.SetColWidth(sheetName, "B", "D", 28); err != nil {
		return err
	}
	return f.Write(w)
}

func WritePDF(w io.Writer, title string, rows []leave.AnalyticsRow) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	widths := []float64{18, 60, 70, 55, 20, 50}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{
			strconv.FormatInt(row.ID, 10),
			tr(row.Name),
			tr(row.Email),
			tr(row.LeaderName),
			row.TotalDays.String(),
		}
		for i, text := range cells {
			pdf.CellFormat(widths[i], 8, text, "1", 0, "L", false, 0, "")
		}
		x, y := pdf.GetXY()
		pdf.CellFormat(widths[5], 8, "", "1", 0, "L", false, 0, "")
		r, g, b := levelColor(row.Level())
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x+1, y+2, (widths[5]-2)*row.Percentage(), 4, "F")
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 8, "Sin resultados")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func levelColor(level string) (int, int, int) {
	switch level {
	case "error":
		return 220, 53, 69
	case "warning":
		return 255, 193, 7
	default:
		return 40, 167, 69
	}
}
