// Package parser turns export document markup into health records.
package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"example.com/healthdash/internal/domain"
)

const (
	observationElement = "Record"
	ctxCheckInterval   = 1024
)

// Layouts accepted for startDate, endDate and creationDate, most common first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// Options narrows what Parse returns.
type Options struct {
	// Types whitelists record types. Empty keeps every type.
	Types []string
}

// Result holds the records in document order, the number of observation
// elements dropped for missing or invalid fields and the number left out by
// the type whitelist.
type Result struct {
	Records  []domain.HealthRecord
	Skipped  int
	Filtered int
}

// Parse reads the observation elements of an export document.
func Parse(ctx context.Context, text string, opts Options) (Result, error) {
	return ParseReader(ctx, strings.NewReader(text), opts)
}

// ParseReader is Parse over a stream of UTF-8 markup.
func ParseReader(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	dec := xml.NewDecoder(r)
	// Input is already decoded to UTF-8 whatever the prolog declares.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	allowed := typeSet(opts.Types)

	var (
		res     Result
		inRoot  bool
		sawRoot bool
		seen    int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, malformed(err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if !inRoot {
				if sawRoot {
					return Result{}, malformed(fmt.Errorf("second root element <%s>", el.Name.Local))
				}
				inRoot, sawRoot = true, true
				continue
			}
			if el.Name.Local == observationElement {
				seen++
				if seen%ctxCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return Result{}, err
					}
				}
				rec, keep, skip := buildRecord(el.Attr, allowed)
				switch {
				case skip:
					res.Skipped++
				case keep:
					res.Records = append(res.Records, rec)
				default:
					res.Filtered++
				}
			}
			if err := dec.Skip(); err != nil {
				return Result{}, malformed(err)
			}
		case xml.EndElement:
			inRoot = false
		case xml.CharData:
			if !inRoot && len(strings.TrimSpace(string(el))) > 0 {
				return Result{}, malformed(fmt.Errorf("text outside root element"))
			}
		}
	}

	if !sawRoot {
		return Result{}, malformed(fmt.Errorf("no root element"))
	}
	return res, nil
}

// buildRecord reports keep=false, skip=false for records filtered out by type.
func buildRecord(attrs []xml.Attr, allowed map[string]struct{}) (rec domain.HealthRecord, keep, skip bool) {
	recordType := strings.TrimSpace(attr(attrs, "type"))
	if recordType == "" {
		return rec, false, true
	}
	if allowed != nil {
		if _, ok := allowed[recordType]; !ok {
			return rec, false, false
		}
	}

	start, ok := parseTimestamp(attr(attrs, "startDate"))
	if !ok {
		return rec, false, true
	}
	end := start
	if raw := attr(attrs, "endDate"); strings.TrimSpace(raw) != "" {
		if end, ok = parseTimestamp(raw); !ok {
			return rec, false, true
		}
	}
	if end.Before(start) {
		return rec, false, true
	}
	created, _ := parseTimestamp(attr(attrs, "creationDate"))

	return domain.HealthRecord{
		Type:    recordType,
		Value:   domain.CoerceValue(recordType, attr(attrs, "value")),
		Unit:    attr(attrs, "unit"),
		Start:   start,
		End:     end,
		Created: created,
		Source:  attr(attrs, "sourceName"),
	}, true, false
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func typeSet(types []string) map[string]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
}
