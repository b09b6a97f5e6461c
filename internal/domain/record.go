// Package domain defines the health records parsed out of an export archive.
package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags how a record value was interpreted at parse time.
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindText     Kind = "text"
	KindUnparsed Kind = "unparsed"
)

// Value is a record value decided once by the parser.
type Value struct {
	kind Kind
	num  float64
	raw  string
}

// NumericValue wraps a finite number.
func NumericValue(v float64) Value {
	return Value{kind: KindNumeric, num: v, raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// TextValue wraps a value that is expected to be a string.
func TextValue(s string) Value {
	return Value{kind: KindText, raw: s}
}

// UnparsedValue keeps a raw string that could not be coerced to the expected type.
func UnparsedValue(s string) Value {
	return Value{kind: KindUnparsed, raw: s}
}

// Kind reports the value tag.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric payload and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// String renders the value for tables. Parsed numbers keep their source text.
func (v Value) String() string {
	return v.raw
}

// CoerceValue interprets raw according to what recordType expects.
// Quantity types expect numbers, category types expect text, anything
// else is numeric when it parses and text otherwise.
func CoerceValue(recordType, raw string) Value {
	trimmed := strings.TrimSpace(raw)
	switch FamilyOf(recordType) {
	case FamilyQuantity:
		if f, ok := parseFinite(trimmed); ok {
			return Value{kind: KindNumeric, num: f, raw: trimmed}
		}
		return UnparsedValue(raw)
	case FamilyCategory:
		return TextValue(raw)
	default:
		if f, ok := parseFinite(trimmed); ok {
			return Value{kind: KindNumeric, num: f, raw: trimmed}
		}
		return TextValue(raw)
	}
}

func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// HealthRecord is one observation from the export document.
type HealthRecord struct {
	Type    string
	Value   Value
	Unit    string
	Start   time.Time
	End     time.Time
	Created time.Time // zero when the export omits creationDate
	Source  string
}
