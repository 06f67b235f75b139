package app

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"crateview/app/metrics"
	"crateview/app/tabular"
)

// ExportCSV serializes a tab's current filtered row set back to CSV. All
// columns are included regardless of visibility, and rows follow the active
// search, filters and sort. Pagination does not apply to exports.
func (a *App) ExportCSV(id string) (filename string, data []byte, err error) {
	err = a.withCSVTab(id, func(tab *FileTab) error {
		ds := tab.Engine.Dataset()
		rows := tab.Engine.FilteredRows()
		data = tabular.Export(ds.Columns, rows, tabular.Delimiter)
		filename = "filtered_" + tab.Name
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	metrics.RecordExport("csv")
	return filename, data, nil
}

// ExportXLSX serializes a tab's current filtered row set to an XLSX
// workbook with a single sheet. Numeric cells keep their numeric type.
func (a *App) ExportXLSX(id string) (filename string, data []byte, err error) {
	err = a.withCSVTab(id, func(tab *FileTab) error {
		ds := tab.Engine.Dataset()
		rows := tab.Engine.FilteredRows()

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		header := make([]any, len(ds.Columns))
		for i, col := range ds.Columns {
			header[i] = col
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		for i, row := range rows {
			cells := make([]any, len(ds.Columns))
			for j, col := range ds.Columns {
				v := row[col]
				if v.IsNumber {
					cells[j] = v.Num
				} else {
					cells[j] = v.Str
				}
			}
			axis, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fmt.Errorf("serialize workbook: %w", err)
		}
		data = buf.Bytes()
		filename = "filtered_" + strings.TrimSuffix(tab.Name, ".csv") + ".xlsx"
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	metrics.RecordExport("xlsx")
	return filename, data, nil
}
