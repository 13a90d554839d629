package output

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

const sheetName = "Scraping Results"

// writeExcel builds a single-worksheet workbook. Lists of uniform records
// render as tables with a header row; everything else as key/value pairs.
func writeExcel(path string, data *models.ExtractedData, prompt, heading string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
	})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", heading)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "A3", "Generated:")
	f.SetCellValue(sheetName, "B3", time.Now().Format("2006-01-02 15:04:05"))
	f.SetCellValue(sheetName, "A4", "Prompt:")
	f.SetCellValue(sheetName, "B4", prompt)

	row := 6
	for _, field := range data.Fields {
		row = writeFieldExcel(f, field, row, sectionStyle, headerStyle)
	}

	// Size columns to their content, capped at 50 characters.
	sizeColumns(f)

	return f.SaveAs(path)
}

// writeFieldExcel renders one top-level field starting at row, returning the
// next free row.
func writeFieldExcel(f *excelize.File, field models.Field, row, sectionStyle, headerStyle int) int {
	label, _ := excelize.CoordinatesToCellName(1, row)

	switch field.Value.Kind {
	case models.KindList:
		f.SetCellValue(sheetName, label, titleCase(field.Key))
		f.SetCellStyle(sheetName, label, label, sectionStyle)
		row++

		if headers, ok := field.Value.UniformHeaders(); ok {
			for col, h := range headers {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheetName, cell, h)
				f.SetCellStyle(sheetName, cell, cell, headerStyle)
			}
			row++
			for _, rec := range field.Value.Items {
				for col, h := range headers {
					cell, _ := excelize.CoordinatesToCellName(col+1, row)
					if v, ok := rec.FieldByKey(h); ok {
						f.SetCellValue(sheetName, cell, cellText(v))
					}
				}
				row++
			}
		} else {
			for _, item := range field.Value.Items {
				cell, _ := excelize.CoordinatesToCellName(1, row)
				f.SetCellValue(sheetName, cell, cellText(item))
				row++
			}
		}
		row++ // blank row between sections

	case models.KindMap:
		f.SetCellValue(sheetName, label, titleCase(field.Key))
		f.SetCellStyle(sheetName, label, label, sectionStyle)
		row++
		for _, sub := range field.Value.Fields {
			keyCell, _ := excelize.CoordinatesToCellName(1, row)
			valCell, _ := excelize.CoordinatesToCellName(2, row)
			f.SetCellValue(sheetName, keyCell, sub.Key)
			f.SetCellValue(sheetName, valCell, cellText(sub.Value))
			row++
		}
		row++

	default:
		valCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, label, titleCase(field.Key))
		f.SetCellValue(sheetName, valCell, field.Value.Text)
		row++
	}

	return row
}

func sizeColumns(f *excelize.File) {
	cols, err := f.GetCols(sheetName)
	if err != nil {
		return
	}
	for i, col := range cols {
		width := 0
		for _, cell := range col {
			if len(cell) > width {
				width = len(cell)
			}
		}
		if width+2 > 50 {
			width = 48
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, name, name, float64(width+2))
	}
}
