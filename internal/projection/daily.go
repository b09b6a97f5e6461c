package projection

import (
	"math"
	"slices"
	"strconv"
)

const dateLayout = "2006-01-02"

// DailyTable pivots charted values into one row per calendar date and one
// column per record type.
type DailyTable struct {
	Columns []string   `json:"columns"`
	Types   []string   `json:"types"`
	Rows    []DailyRow `json:"rows"`
}

// DailyRow holds the per-type daily mean; cells are blank when a type has
// no numeric value that day.
type DailyRow struct {
	Date  string   `json:"date"`
	Cells []string `json:"cells"`
}

// Daily builds the pivot from projected groups. Dates use each sample's own
// offset and are listed oldest first.
func Daily(groups []Group) DailyTable {
	table := DailyTable{
		Columns: make([]string, 0, len(groups)),
		Types:   make([]string, 0, len(groups)),
		Rows:    []DailyRow{},
	}

	type acc struct {
		sum   float64
		count int
	}
	byDate := make(map[string][]acc)
	for col, g := range groups {
		table.Columns = append(table.Columns, g.Label)
		table.Types = append(table.Types, g.Type)
		for _, p := range g.Points {
			date := p.Time.Format(dateLayout)
			cells, ok := byDate[date]
			if !ok {
				cells = make([]acc, len(groups))
				byDate[date] = cells
			}
			cells[col].sum += p.Value
			cells[col].count++
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	for _, d := range dates {
		row := DailyRow{Date: d, Cells: make([]string, len(groups))}
		for i, a := range byDate[d] {
			if a.count == 0 {
				continue
			}
			mean := math.Round(a.sum/float64(a.count)*100) / 100
			row.Cells[i] = strconv.FormatFloat(mean, 'f', -1, 64)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
