package sap

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ManifestPDF renders the given rows as a printable manifest, one line per
// processed record, in the SAP column order.
func ManifestPDF(title string, rows []Row) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A3", "")
	pdf.SetMargins(8, 10, 8)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generado: %s  -  %d registros",
		time.Now().Format("2006-01-02 15:04"), len(rows)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(Columns))

	header := func() {
		pdf.SetFont("Arial", "B", 6)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range Columns {
			pdf.CellFormat(colW, 6, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	pdf.SetFont("Arial", "", 6)
	for _, row := range rows {
		if pdf.GetY() > 272 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 6)
		}
		for _, cell := range row.cells() {
			pdf.CellFormat(colW, 5, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("manifest PDF generation failed: %w", err)
	}
	return buf.Bytes(), nil
}
