package projection

import (
	"time"

	"example.com/healthdash/internal/domain"
)

// Filter keeps records starting on or after midnight of the day that lies
// rng before the latest record, in that record's offset. Order is preserved.
func Filter(records []domain.HealthRecord, rng domain.TimeRange) []domain.HealthRecord {
	span := rng.Span()
	if span == 0 || len(records) == 0 {
		return records
	}

	latest := records[0].Start
	for _, rec := range records[1:] {
		if rec.Start.After(latest) {
			latest = rec.Start
		}
	}
	cutoff := latest.Add(-span)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, cutoff.Location())

	out := make([]domain.HealthRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Start.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}
