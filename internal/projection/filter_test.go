package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthdash/internal/domain"
)

func TestFilterAllKeepsEverything(t *testing.T) {
	records := []domain.HealthRecord{
		record("StepCount", "1", at(1, 8, 0)),
		record("StepCount", "2", at(2, 8, 0)),
	}
	require.Len(t, Filter(records, domain.RangeAll), 2)
}

func TestFilterOneMonthCutsAtMidnight(t *testing.T) {
	latest := time.Date(2023, time.March, 15, 18, 30, 0, 0, tokyo)
	records := []domain.HealthRecord{
		record("StepCount", "old", time.Date(2023, time.February, 11, 23, 59, 0, 0, tokyo)),
		record("StepCount", "edge", time.Date(2023, time.February, 12, 0, 0, 0, 0, tokyo)),
		record("StepCount", "latest", latest),
		record("StepCount", "mid", time.Date(2023, time.March, 1, 9, 0, 0, 0, tokyo)),
	}

	got := Filter(records, domain.RangeOneMonth)

	require.Len(t, got, 3)
	require.Equal(t, "edge", got[0].Value.String())
	require.Equal(t, "latest", got[1].Value.String())
	require.Equal(t, "mid", got[2].Value.String())
}

func TestFilterEmpty(t *testing.T) {
	require.Empty(t, Filter(nil, domain.RangeOneYear))
}
