package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthdash/internal/domain"
	"example.com/healthdash/internal/testsupport"
)

var tokyo = time.FixedZone("", 9*60*60)

func TestParseSingleObservation(t *testing.T) {
	doc := testsupport.ExportDocument(testsupport.Record(
		"type", "StepCount",
		"sourceName", "Phone",
		"unit", "count",
		"creationDate", "2023-01-01 08:06:00 +0900",
		"startDate", "2023-01-01T08:00:00+0900",
		"endDate", "2023-01-01T08:05:00+0900",
		"value", "120",
	))

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Zero(t, res.Skipped)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	require.Equal(t, "StepCount", rec.Type)
	require.Equal(t, "count", rec.Unit)
	require.Equal(t, "Phone", rec.Source)
	v, ok := rec.Value.Float()
	require.True(t, ok)
	require.InDelta(t, 120, v, 1e-9)
	require.True(t, rec.Start.Equal(time.Date(2023, 1, 1, 8, 0, 0, 0, tokyo)))
	require.True(t, rec.End.Equal(time.Date(2023, 1, 1, 8, 5, 0, 0, tokyo)))
	require.True(t, rec.Created.Equal(time.Date(2023, 1, 1, 8, 6, 0, 0, tokyo)))
	_, offset := rec.Start.Zone()
	require.Equal(t, 9*60*60, offset)
}

func TestParseSkipsElementsMissingRequiredFields(t *testing.T) {
	doc := testsupport.ExportDocument(
		testsupport.Record("value", "120", "startDate", "2023-01-01 08:00:00 +0900"),
		testsupport.Record("type", "   ", "startDate", "2023-01-01 08:00:00 +0900"),
		testsupport.Record("type", "StepCount", "value", "1"),
		testsupport.Record("type", "StepCount", "startDate", "yesterday"),
		testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "endDate", "later"),
		testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "endDate", "2023-01-01 07:00:00 +0900"),
		testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "value", "5"),
	)

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Equal(t, 6, res.Skipped)
	require.Len(t, res.Records, 1)
	require.Equal(t, "5", res.Records[0].Value.String())
}

func TestParseMissingEndDefaultsToStart(t *testing.T) {
	doc := testsupport.ExportDocument(testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "value", "5"))

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.True(t, res.Records[0].End.Equal(res.Records[0].Start))
}

func TestParseKeepsDocumentOrderAndDuplicates(t *testing.T) {
	rec := func(value, start string) string {
		return testsupport.Record("type", domain.TypeHeartRate, "unit", "count/min", "startDate", start, "value", value)
	}
	doc := testsupport.ExportDocument(
		rec("70", "2023-01-02 08:00:00 +0900"),
		rec("60", "2023-01-01 08:00:00 +0900"),
		rec("60", "2023-01-01 08:00:00 +0900"),
	)

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	require.Equal(t, []string{"70", "60", "60"}, []string{
		res.Records[0].Value.String(), res.Records[1].Value.String(), res.Records[2].Value.String(),
	})
}

func TestParseFlagsUnparsedQuantity(t *testing.T) {
	doc := testsupport.ExportDocument(
		testsupport.Record("type", domain.TypeBodyMass, "startDate", "2023-01-01 08:00:00 +0900", "value", "heavy"),
		testsupport.Record("type", "HKCategoryTypeIdentifierSleepAnalysis", "startDate", "2023-01-01 08:00:00 +0900", "value", "HKCategoryValueSleepAnalysisAsleep"),
	)

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	require.Equal(t, domain.KindUnparsed, res.Records[0].Value.Kind())
	require.Equal(t, "heavy", res.Records[0].Value.String())
	require.Equal(t, domain.KindText, res.Records[1].Value.Kind())
}

func TestParseOnlyReadsTopLevelRecords(t *testing.T) {
	doc := testsupport.ExportDocument(
		`<Me HKCharacteristicTypeIdentifierBiologicalSex="HKBiologicalSexNotSet"/>`,
		`<Record type="HKQuantityTypeIdentifierHeartRate" startDate="2023-01-01 08:00:00 +0900" value="61">`+
			`<MetadataEntry key="HKMetadataKeyHeartRateMotionContext" value="0"/>`+
			`<HeartRateVariabilityMetadataList><InstantaneousBeatsPerMinute bpm="60" time="8:00:00.00 AM"/></HeartRateVariabilityMetadataList>`+
			`</Record>`,
		`<Workout workoutActivityType="HKWorkoutActivityTypeWalking" startDate="2023-01-01 09:00:00 +0900">`+
			`<Record type="HKQuantityTypeIdentifierHeartRate" startDate="2023-01-01 09:00:00 +0900" value="99"/>`+
			`</Workout>`,
		`<ActivitySummary dateComponents="2023-01-01" activeEnergyBurned="0"/>`,
	)

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Zero(t, res.Skipped)
	require.Len(t, res.Records, 1)
	require.Equal(t, "61", res.Records[0].Value.String())
}

func TestParseTypeWhitelist(t *testing.T) {
	doc := testsupport.ExportDocument(
		testsupport.Record("type", domain.TypeHeartRate, "startDate", "2023-01-01 08:00:00 +0900", "value", "61"),
		testsupport.Record("type", "HKQuantityTypeIdentifierStepCount", "startDate", "2023-01-01 08:00:00 +0900", "value", "10"),
		testsupport.Record("type", "HKQuantityTypeIdentifierStepCount", "startDate", "broken"),
		testsupport.Record("startDate", "2023-01-01 08:00:00 +0900"),
	)

	res, err := Parse(context.Background(), doc, Options{Types: domain.DefaultTypes()})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, domain.TypeHeartRate, res.Records[0].Type)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, 2, res.Filtered)
}

func TestParseElementCountRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 17, 300} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			elements := make([]string, 0, n)
			for i := 0; i < n; i++ {
				start := time.Date(2023, 1, 1, 0, 0, 0, 0, tokyo).Add(time.Duration(i) * time.Minute)
				elements = append(elements, testsupport.Record(
					"type", domain.TypeHeartRate,
					"startDate", start.Format("2006-01-02 15:04:05 -0700"),
					"value", fmt.Sprintf("%d", 60+i%40),
				))
			}
			res, err := Parse(context.Background(), testsupport.ExportDocument(elements...), Options{})
			require.NoError(t, err)
			require.Len(t, res.Records, n)
		})
	}
}

func TestParseRejectsMalformedMarkup(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unclosed":      `<HealthData><Record type="x" startDate="2023-01-01 08:00:00 +0900"/>`,
		"mismatched":    `<HealthData><Record></Workout></HealthData>`,
		"two roots":     `<HealthData/><HealthData/>`,
		"stray text":    `<HealthData/>trailing`,
		"bad attribute": `<HealthData><Record type=unquoted/></HealthData>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(context.Background(), doc, Options{})
			require.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}

func TestParseAcceptsDeclaredNonUTF8Encoding(t *testing.T) {
	doc := strings.Replace(testsupport.ExportDocument(
		testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "value", "3"),
	), `encoding="UTF-8"`, `encoding="UTF-16"`, 1)

	res, err := Parse(context.Background(), doc, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
}

func TestParseHonoursCancellation(t *testing.T) {
	elements := make([]string, ctxCheckInterval*2)
	for i := range elements {
		elements[i] = testsupport.Record("type", "StepCount", "startDate", "2023-01-01 08:00:00 +0900", "value", "1")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, testsupport.ExportDocument(elements...), Options{})
	require.ErrorIs(t, err, context.Canceled)
}
