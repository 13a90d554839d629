package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// writePDF builds a paginated A4 document with the same logical structure as
// the Word output. Lists of uniform records render as ruled tables.
func writePDF(path string, data *models.ExtractedData, prompt, heading string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, heading, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Scraping Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "Generated: "+time.Now().Format("2006-01-02 15:04:05"), "", "L", false)
	pdf.MultiCell(0, 6, "Prompt: "+prompt, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Extracted Data", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)

	writeFieldsPDF(pdf, data.Fields, 0)

	return pdf.OutputFileAndClose(path)
}

func writeFieldsPDF(pdf *fpdf.Fpdf, fields []models.Field, level int) {
	indent := strings.Repeat("    ", level)

	for _, f := range fields {
		switch f.Value.Kind {
		case models.KindMap:
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, fmt.Sprintf("%s%s:", indent, titleCase(f.Key)), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			writeFieldsPDF(pdf, f.Value.Fields, level+1)

		case models.KindList:
			if headers, ok := f.Value.UniformHeaders(); ok {
				pdf.SetFont("Helvetica", "B", 11)
				pdf.MultiCell(0, 6, fmt.Sprintf("%s%s:", indent, titleCase(f.Key)), "", "L", false)
				writeTablePDF(pdf, headers, f.Value.Items)
				pdf.SetFont("Helvetica", "", 11)
				continue
			}
			pdf.MultiCell(0, 6, fmt.Sprintf("%s%s:", indent, f.Key), "", "L", false)
			for _, item := range f.Value.Items {
				if item.Kind == models.KindMap {
					writeFieldsPDF(pdf, item.Fields, level+1)
				} else {
					pdf.MultiCell(0, 6, fmt.Sprintf("%s    - %s", indent, item.Text), "", "L", false)
				}
			}

		default:
			pdf.MultiCell(0, 6, fmt.Sprintf("%s%s: %s", indent, f.Key, f.Value.Text), "", "L", false)
		}
	}
}

// writeTablePDF renders a list of uniform records as a grid with a shaded
// header row.
func writeTablePDF(pdf *fpdf.Fpdf, headers []string, records []models.Value) {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range headers {
		pdf.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, rec := range records {
		for _, h := range headers {
			cell := ""
			if v, ok := rec.FieldByKey(h); ok {
				cell = cellText(v)
			}
			pdf.CellFormat(colW, 7, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

// cellText flattens a value for single-cell display.
func cellText(v models.Value) string {
	switch v.Kind {
	case models.KindList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, cellText(item))
		}
		return strings.Join(parts, ", ")
	case models.KindMap:
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			parts = append(parts, f.Key+": "+cellText(f.Value))
		}
		return strings.Join(parts, "; ")
	default:
		return v.Text
	}
}
