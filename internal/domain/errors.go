package domain

import "errors"

var (
	// ErrMalformedArchive is returned when the upload is not a zip holding exactly one export document.
	ErrMalformedArchive = errors.New("malformed archive")
	// ErrEncoding is returned when the export document is not decodable text.
	ErrEncoding = errors.New("export document is not valid text")
	// ErrMalformedDocument is returned when the export document is not well-formed markup.
	ErrMalformedDocument = errors.New("malformed export document")
)

// Error categories reported to clients.
const (
	CategoryMalformedArchive  = "malformed_archive"
	CategoryEncoding          = "encoding_error"
	CategoryMalformedDocument = "malformed_document"
	CategoryInternal          = "internal_error"
)

// Category maps a pipeline error to its user-facing category.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrMalformedArchive):
		return CategoryMalformedArchive
	case errors.Is(err, ErrEncoding):
		return CategoryEncoding
	case errors.Is(err, ErrMalformedDocument):
		return CategoryMalformedDocument
	default:
		return CategoryInternal
	}
}
