package export

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"phonepe-analyzer/internal/model"
)

const sheet = "Transactions"

// WriteXLSX returns an XLSX workbook for the categorized table.
func WriteXLSX(txns []model.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := strings.Split(Header, ",")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, t := range txns {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, t.Date.Format(dateFormat))
		write(2, t.Desc)
		write(3, string(t.Type))
		write(4, t.Amount.StringFixed(2))
		write(5, t.Category)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 40) // merchant
	_ = f.SetColWidth(sheet, "C", "C", 12) // direction
	_ = f.SetColWidth(sheet, "D", "D", 14) // amount
	_ = f.SetColWidth(sheet, "E", "E", 22) // category

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "xlsx write")
	}
	return buf.Bytes(), nil
}
