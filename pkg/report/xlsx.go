package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSheetName is the name of the single worksheet in the workbook.
const XLSXSheetName = "Forecast"

// XLSX renders the table as a workbook with the same layout as the CSV.
// Numeric cells are written as numbers.
func (t *WideTable) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheetName); err != nil {
		return nil, fmt.Errorf("could not name worksheet: %w", err)
	}

	for i, row := range t.Rows {
		var values []interface{}
		switch row.Kind {
		case HeaderRow:
			values = append(values, "", "")
			for _, period := range row.Periods {
				values = append(values, period)
			}
		case SeparatorRow:
			continue
		default:
			values = append(values, row.Region, AccountTag+row.Account)
			for _, cell := range row.Cells {
				if cell.Numeric {
					values = append(values, cell.Value)
				} else {
					values = append(values, cell.Text)
				}
			}
		}

		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(XLSXSheetName, axis, &values); err != nil {
			return nil, fmt.Errorf("could not write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(XLSXSheetName, "A", "B", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
