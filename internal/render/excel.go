// Package render turns pipeline results into the downloadable
// artifacts: a fund table workbook and a narrative report document.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"fundscope/internal/domain"
)

// fundColumns is the canonical column order for the fund table. Fields
// outside this list are appended alphabetically after it.
var fundColumns = []string{
	"Fund Manager",
	"TVPI",
	"Location",
	"URL",
	"Summary",
	"Fund Stage",
	"Fund Size",
	"Invested to Date",
	"Minimum Check Size",
	"# of Portfolio Companies",
	"Stage Focus",
	"Sectors",
	"Market Validated Outlier",
	"Female Partner in Fund",
	"Minority (BIPOC) Partner in Fund",
}

const fundSheet = "Funds"

// FundTable renders the consolidated fund list as an xlsx workbook:
// one header row, one row per fund, nulls as empty cells.
func FundTable(result domain.ConsolidatedResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(fundSheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("dropping default sheet: %w", err)
	}

	columns := columnsFor(result.Funds)
	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(fundSheet, cell, name); err != nil {
			return nil, err
		}
	}

	for row, fund := range result.Funds {
		for col, name := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(fundSheet, cell, cellValue(fund[name])); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// columnsFor returns the canonical columns plus any extra attributes
// present across the fund list, sorted for stable output.
func columnsFor(funds []domain.Fund) []string {
	known := make(map[string]bool, len(fundColumns))
	for _, c := range fundColumns {
		known[c] = true
	}

	extraSet := make(map[string]bool)
	for _, fund := range funds {
		for key := range fund {
			if !known[key] {
				extraSet[key] = true
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for key := range extraSet {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	return append(append([]string{}, fundColumns...), extras...)
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool, float64, int, int64:
		return val
	default:
		// Nested structures land as their JSON text.
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
