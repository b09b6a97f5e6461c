// Package testsupport builds export archives for tests.
package testsupport

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Entry is a file placed in a test archive.
type Entry struct {
	Name string
	Body []byte
}

// BuildArchive zips entries in order and returns the archive bytes.
func BuildArchive(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err, "create %s", e.Name)
		_, err = w.Write(e.Body)
		require.NoError(t, err, "write %s", e.Name)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ExportArchive wraps document as apple_health_export/export.xml.
func ExportArchive(t testing.TB, document string) []byte {
	t.Helper()
	return BuildArchive(t, Entry{Name: "apple_health_export/export.xml", Body: []byte(document)})
}

// ExportDocument renders a HealthData document around the given elements.
func ExportDocument(elements ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<!DOCTYPE HealthData [\n<!ELEMENT HealthData (ExportDate,Me,(Record|Workout)*)>\n<!ATTLIST HealthData locale CDATA #REQUIRED>\n]>\n")
	b.WriteString(`<HealthData locale="en_US">` + "\n")
	b.WriteString(` <ExportDate value="2023-02-01 10:00:00 +0900"/>` + "\n")
	for _, el := range elements {
		b.WriteString(" ")
		b.WriteString(el)
		b.WriteString("\n")
	}
	b.WriteString("</HealthData>\n")
	return b.String()
}

// Record renders a self-closing Record element from name/value attribute pairs.
func Record(attrs ...string) string {
	var b strings.Builder
	b.WriteString("<Record")
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteString(" ")
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.WriteString(attrs[i+1])
		b.WriteString(`"`)
	}
	b.WriteString("/>")
	return b.String()
}
