package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange limits a dashboard to the most recent stretch of data.
type TimeRange string

const (
	RangeAll       TimeRange = "all"
	RangeOneYear   TimeRange = "1y"
	RangeSixMonths TimeRange = "6m"
	RangeOneMonth  TimeRange = "1m"
)

// TimeRanges lists the presets in display order.
var TimeRanges = []TimeRange{RangeAll, RangeOneYear, RangeSixMonths, RangeOneMonth}

// ParseTimeRange accepts a preset name; empty means RangeAll.
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, nil
	}
	for _, r := range TimeRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// Span returns the look-back window; zero means unbounded.
func (r TimeRange) Span() time.Duration {
	switch r {
	case RangeOneYear:
		return 365 * 24 * time.Hour
	case RangeSixMonths:
		return 183 * 24 * time.Hour
	case RangeOneMonth:
		return 31 * 24 * time.Hour
	default:
		return 0
	}
}

// Label is the human-readable preset name.
func (r TimeRange) Label() string {
	switch r {
	case RangeOneYear:
		return "One year"
	case RangeSixMonths:
		return "Six months"
	case RangeOneMonth:
		return "One month"
	default:
		return "Entire duration"
	}
}
