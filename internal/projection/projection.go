// Package projection groups parsed records by type and shapes them for
// charts and tables.
package projection

import (
	"slices"
	"strings"
	"time"

	"example.com/healthdash/internal/domain"
)

// TimeLayout is how table rows render timestamps, matching the export format.
const TimeLayout = "2006-01-02 15:04:05 -0700"

// SeriesPoint is one charted sample.
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TableRow is a record flattened to display strings.
type TableRow struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Kind   string `json:"kind"`
	Unit   string `json:"unit"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Source string `json:"source"`
}

// RecordSet maps a record type to its records in document order.
type RecordSet map[string][]domain.HealthRecord

// Group is the chart series and table for a single record type.
type Group struct {
	Type           string        `json:"type"`
	Label          string        `json:"label"`
	Unit           string        `json:"unit"`
	ReferenceLines []float64     `json:"reference_lines,omitempty"`
	Points         []SeriesPoint `json:"points"`
	Rows           []TableRow    `json:"rows"`
}

// Project groups records by type. Catalog types come first in catalog order,
// then any other type by identifier; each series is ascending and each table
// descending by start time, ties keeping document order.
func Project(records []domain.HealthRecord) (RecordSet, []Group) {
	set := make(RecordSet)
	for _, rec := range records {
		set[rec.Type] = append(set[rec.Type], rec)
	}

	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	slices.SortFunc(types, compareTypes)

	groups := make([]Group, 0, len(types))
	for _, t := range types {
		groups = append(groups, buildGroup(t, set[t]))
	}
	return set, groups
}

func compareTypes(a, b string) int {
	catalog := domain.DefaultTypes()
	ra, rb := slices.Index(catalog, a), slices.Index(catalog, b)
	switch {
	case ra >= 0 && rb >= 0:
		return ra - rb
	case ra >= 0:
		return -1
	case rb >= 0:
		return 1
	}
	return strings.Compare(a, b)
}

func buildGroup(recordType string, records []domain.HealthRecord) Group {
	info := domain.Describe(recordType)
	g := Group{
		Type:           recordType,
		Label:          info.Label,
		Unit:           unitOf(records, info.Unit),
		ReferenceLines: info.ReferenceLines,
		Points:         make([]SeriesPoint, 0, len(records)),
		Rows:           make([]TableRow, 0, len(records)),
	}

	ascending := slices.Clone(records)
	slices.SortStableFunc(ascending, func(a, b domain.HealthRecord) int {
		return a.Start.Compare(b.Start)
	})
	for _, rec := range ascending {
		if v, ok := rec.Value.Float(); ok {
			g.Points = append(g.Points, SeriesPoint{Time: rec.Start, Value: v})
		}
	}

	descending := slices.Clone(records)
	slices.SortStableFunc(descending, func(a, b domain.HealthRecord) int {
		return b.Start.Compare(a.Start)
	})
	for _, rec := range descending {
		g.Rows = append(g.Rows, toRow(rec))
	}
	return g
}

func unitOf(records []domain.HealthRecord, fallback string) string {
	for _, rec := range records {
		if rec.Unit != "" {
			return rec.Unit
		}
	}
	return fallback
}

func toRow(rec domain.HealthRecord) TableRow {
	return TableRow{
		Type:   rec.Type,
		Value:  rec.Value.String(),
		Kind:   string(rec.Value.Kind()),
		Unit:   rec.Unit,
		Start:  rec.Start.Format(TimeLayout),
		End:    rec.End.Format(TimeLayout),
		Source: rec.Source,
	}
}
