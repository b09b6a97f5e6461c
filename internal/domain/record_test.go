package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceValueByFamily(t *testing.T) {
	cases := []struct {
		name       string
		recordType string
		raw        string
		kind       Kind
		text       string
	}{
		{"quantity number", TypeHeartRate, "72", KindNumeric, "72"},
		{"quantity keeps source text", TypeBodyMass, " 70.50 ", KindNumeric, "70.50"},
		{"quantity garbage", TypeHeartRate, "fast", KindUnparsed, "fast"},
		{"quantity nan", TypeHeartRate, "NaN", KindUnparsed, "NaN"},
		{"quantity empty", TypeHeartRate, "", KindUnparsed, ""},
		{"category text", "HKCategoryTypeIdentifierSleepAnalysis", "HKCategoryValueSleepAnalysisInBed", KindText, "HKCategoryValueSleepAnalysisInBed"},
		{"category numeric-looking", "HKCategoryTypeIdentifierMindfulSession", "1", KindText, "1"},
		{"other number", "StepCount", "120", KindNumeric, "120"},
		{"other text", "StepCount", "many", KindText, "many"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := CoerceValue(tc.recordType, tc.raw)
			require.Equal(t, tc.kind, v.Kind())
			require.Equal(t, tc.text, v.String())
			_, numeric := v.Float()
			require.Equal(t, tc.kind == KindNumeric, numeric)
		})
	}
}

func TestNumericValueFormatsShortest(t *testing.T) {
	v := NumericValue(72.5)
	f, ok := v.Float()
	require.True(t, ok)
	require.InDelta(t, 72.5, f, 1e-9)
	require.Equal(t, "72.5", v.String())
}

func TestCategory(t *testing.T) {
	require.Equal(t, CategoryMalformedArchive, Category(fmt.Errorf("open: %w", ErrMalformedArchive)))
	require.Equal(t, CategoryEncoding, Category(fmt.Errorf("decode: %w", ErrEncoding)))
	require.Equal(t, CategoryMalformedDocument, Category(fmt.Errorf("parse: %w", ErrMalformedDocument)))
	require.Equal(t, CategoryInternal, Category(fmt.Errorf("boom")))
}

func TestDescribe(t *testing.T) {
	info := Describe(TypeBloodPressureSystolic)
	require.Equal(t, "SBP", info.Label)
	require.Equal(t, []float64{120}, info.ReferenceLines)

	info.ReferenceLines[0] = 0
	require.Equal(t, []float64{120}, Describe(TypeBloodPressureSystolic).ReferenceLines)

	require.Equal(t, "StepCount", Describe("HKQuantityTypeIdentifierStepCount").Label)
	require.Equal(t, "SleepAnalysis", Describe("HKCategoryTypeIdentifierSleepAnalysis").Label)
	require.Equal(t, "Custom", Describe("Custom").Label)
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange("")
	require.NoError(t, err)
	require.Equal(t, RangeAll, r)
	require.Zero(t, r.Span())

	r, err = ParseTimeRange(" 6M ")
	require.NoError(t, err)
	require.Equal(t, RangeSixMonths, r)
	require.Equal(t, "Six months", r.Label())

	_, err = ParseTimeRange("2w")
	require.Error(t, err)
}
