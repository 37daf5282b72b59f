// Package spreadsheet reads and writes the inventory workbook.
//
// Layout (first sheet, header on row 1):
//
//	A code | B codes (comma separated, first is the short code) | C description | D stock | E category
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tooltrack/internal/model"
	"tooltrack/internal/service"
)

var header = []string{"CODE", "CODES", "DESCRIPTION", "STOCK", "CATEGORY"}

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReadProducts decodes the workbook into import rows. Blank rows are skipped.
// The stock cell is passed through as text for the importer to validate.
func ReadProducts(r io.Reader) ([]service.SheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []service.SheetRow
	for i, cells := range rows {
		if i == 0 {
			continue // header
		}
		cell := func(n int) string {
			if n < len(cells) {
				return strings.TrimSpace(cells[n])
			}
			return ""
		}
		if cell(0) == "" && cell(1) == "" && cell(2) == "" {
			continue
		}
		out = append(out, service.SheetRow{
			Row:         i + 1,
			Code:        cell(0),
			Codes:       splitCodes(cell(1)),
			Description: cell(2),
			Stock:       cell(3),
			Category:    strings.ToLower(cell(4)),
		})
	}
	return out, nil
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// WriteProducts encodes products in the same layout ReadProducts accepts.
func WriteProducts(w io.Writer, products []model.Product) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for i, h := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"1", h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(sheet, "A1", "E1", style)
	}
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "C", 40)

	for i, p := range products {
		row := strconv.Itoa(i + 2)
		f.SetCellValue(sheet, "A"+row, p.Code)
		f.SetCellValue(sheet, "B"+row, strings.Join(p.AllCodes(), ", "))
		f.SetCellValue(sheet, "C"+row, p.Description)
		f.SetCellValue(sheet, "D"+row, p.Stock)
		f.SetCellValue(sheet, "E"+row, string(p.Category))
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
