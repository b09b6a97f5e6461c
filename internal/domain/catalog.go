package domain

import "strings"

// Family groups record type identifiers by the kind of value they carry.
type Family int

const (
	FamilyOther Family = iota
	FamilyQuantity
	FamilyCategory
)

const (
	quantityPrefix = "HKQuantityTypeIdentifier"
	categoryPrefix = "HKCategoryTypeIdentifier"
)

// Well-known record types charted by the dashboard.
const (
	TypeBloodPressureSystolic  = "HKQuantityTypeIdentifierBloodPressureSystolic"
	TypeBloodPressureDiastolic = "HKQuantityTypeIdentifierBloodPressureDiastolic"
	TypeHeartRate              = "HKQuantityTypeIdentifierHeartRate"
	TypeBodyMass               = "HKQuantityTypeIdentifierBodyMass"
)

// TypeInfo carries display metadata for a record type.
type TypeInfo struct {
	Type           string
	Label          string
	Unit           string
	ReferenceLines []float64
}

var catalog = map[string]TypeInfo{
	TypeBloodPressureSystolic:  {Type: TypeBloodPressureSystolic, Label: "SBP", Unit: "mmHg", ReferenceLines: []float64{120}},
	TypeBloodPressureDiastolic: {Type: TypeBloodPressureDiastolic, Label: "DBP", Unit: "mmHg", ReferenceLines: []float64{80}},
	TypeHeartRate:              {Type: TypeHeartRate, Label: "HR", Unit: "bpm"},
	TypeBodyMass:               {Type: TypeBodyMass, Label: "BM", Unit: "kg"},
}

// DefaultTypes lists the record types kept when no explicit whitelist is configured.
func DefaultTypes() []string {
	return []string{
		TypeBloodPressureSystolic,
		TypeBloodPressureDiastolic,
		TypeHeartRate,
		TypeBodyMass,
	}
}

// FamilyOf classifies a record type identifier.
func FamilyOf(recordType string) Family {
	switch {
	case strings.HasPrefix(recordType, quantityPrefix):
		return FamilyQuantity
	case strings.HasPrefix(recordType, categoryPrefix):
		return FamilyCategory
	default:
		return FamilyOther
	}
}

// Describe returns display metadata for recordType. Unknown types are
// labelled with their identifier minus the vendor prefix; unit is left to
// the records themselves.
func Describe(recordType string) TypeInfo {
	if info, ok := catalog[recordType]; ok {
		info.ReferenceLines = append([]float64(nil), info.ReferenceLines...)
		return info
	}
	label := strings.TrimPrefix(recordType, quantityPrefix)
	label = strings.TrimPrefix(label, categoryPrefix)
	if label == "" {
		label = recordType
	}
	return TypeInfo{Type: recordType, Label: label}
}
