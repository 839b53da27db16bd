package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel flattens every sheet of a workbook into CSV-like text.
// Sheet boundaries are kept visible so downstream analysis can tell
// which tab a row came from.
func extractExcel(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString("Sheet: ")
		buf.WriteString(sheet)
		buf.WriteString("\n\n")
		for _, row := range rows {
			buf.WriteString(strings.Join(row, ","))
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}
