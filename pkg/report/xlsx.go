package report

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
)

const xlsxSheetName = "Classes"

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// WriteXlsx writes entries to a single-sheet workbook at path, followed by
// the run totals.
func WriteXlsx(path string, entries []Entry, totals classify.Totals) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})

	row := 1
	for col, name := range []string{"Class", "Cycles", "Percent"} {
		_ = f.SetCellValue(xlsxSheetName, cellName(col+1, row), name)
	}
	_ = f.SetCellStyle(xlsxSheetName, cellName(1, row), cellName(3, row), headerStyle)
	row++

	for _, e := range entries {
		_ = f.SetCellValue(xlsxSheetName, cellName(1, row), e.Label)
		_ = f.SetCellValue(xlsxSheetName, cellName(2, row), e.Cycles)
		_ = f.SetCellValue(xlsxSheetName, cellName(3, row), e.Percent)
		row++
	}

	row++
	summary := [][2]any{
		{"Total cycles", totals.Total},
		{"Matched cycles", totals.Matched},
		{"Matched percent", utils.Percent(totals.Matched, totals.Total)},
	}
	for _, kv := range summary {
		_ = f.SetCellValue(xlsxSheetName, cellName(1, row), kv[0])
		_ = f.SetCellValue(xlsxSheetName, cellName(2, row), kv[1])
		_ = f.SetCellStyle(xlsxSheetName, cellName(1, row), cellName(1, row), headerStyle)
		row++
	}

	return errors.Wrapf(f.SaveAs(path), "failed to save %s", path)
}
