// Package archive extracts the export document from an uploaded zip archive.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"example.com/healthdash/internal/domain"
)

const (
	// DefaultEntryName is the export document name inside the archive.
	DefaultEntryName = "export.xml"
	// DefaultMaxEntryBytes caps the uncompressed export document size.
	DefaultMaxEntryBytes int64 = 2 << 30
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Config controls which entry is read and how large it may be.
type Config struct {
	EntryName     string
	MaxEntryBytes int64
}

// Reader locates and decodes the export document. It holds no per-upload state.
type Reader struct {
	entryName string
	maxBytes  int64
}

// NewReader builds a Reader, filling unset fields with defaults.
func NewReader(cfg Config) *Reader {
	name := strings.TrimSpace(cfg.EntryName)
	if name == "" {
		name = DefaultEntryName
	}
	maxBytes := cfg.MaxEntryBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxEntryBytes
	}
	return &Reader{entryName: name, maxBytes: maxBytes}
}

// Read returns the decoded text of the single export document in data.
func (r *Reader) Read(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedArchive, err)
	}

	entry, err := r.locate(zr.File)
	if err != nil {
		return "", err
	}

	raw, err := r.readEntry(entry)
	if err != nil {
		return "", err
	}
	return decode(raw)
}

func (r *Reader) locate(files []*zip.File) (*zip.File, error) {
	var candidates []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() || isResourceFork(f.Name) {
			continue
		}
		if strings.EqualFold(path.Base(f.Name), r.entryName) {
			candidates = append(candidates, f)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no %s entry found", domain.ErrMalformedArchive, r.entryName)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		return nil, fmt.Errorf("%w: %d %s entries found (%s)", domain.ErrMalformedArchive, len(candidates), r.entryName, strings.Join(names, ", "))
	}
}

func (r *Reader) readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(r.maxBytes) {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", domain.ErrMalformedArchive, f.Name, f.UncompressedSize64, r.maxBytes)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrMalformedArchive, f.Name, err)
	}
	defer rc.Close()

	// The header size is not trusted; read one byte past the limit to detect overflow.
	raw, err := io.ReadAll(io.LimitReader(rc, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrMalformedArchive, f.Name, err)
	}
	if int64(len(raw)) > r.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrMalformedArchive, f.Name, r.maxBytes)
	}
	return raw, nil
}

func isResourceFork(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._")
}

// decode turns raw entry bytes into UTF-8 text. UTF-16 is accepted only
// with a byte order mark.
func decode(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		raw = raw[len(bomUTF8):]
	case bytes.HasPrefix(raw, bomUTF16BE), bytes.HasPrefix(raw, bomUTF16LE):
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("%w: truncated UTF-16 text", domain.ErrEncoding)
		}
		var order binary.ByteOrder = binary.BigEndian
		if bytes.HasPrefix(raw, bomUTF16LE) {
			order = binary.LittleEndian
		}
		if at, ok := checkSurrogates(raw[2:], order); !ok {
			return "", fmt.Errorf("%w: unpaired UTF-16 surrogate at byte %d", domain.ErrEncoding, at+2)
		}
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrEncoding, err)
		}
		return string(out), nil
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: invalid UTF-8 sequence", domain.ErrEncoding)
	}
	return string(raw), nil
}

// checkSurrogates reports the offset of the first code unit that is not part
// of a well-formed surrogate pair. The x/text decoder would substitute
// U+FFFD for it.
func checkSurrogates(b []byte, order binary.ByteOrder) (int, bool) {
	for i := 0; i+1 < len(b); i += 2 {
		u := rune(order.Uint16(b[i:]))
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+3 >= len(b) {
			return i, false
		}
		next := rune(order.Uint16(b[i+2:]))
		if utf16.DecodeRune(u, next) == utf8.RuneError {
			return i, false
		}
		i += 2
	}
	return 0, true
}
