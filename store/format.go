package store

import "errors"

const (
	// MagicNumber identifies survey store files (ASCII: "SVY1").
	MagicNumber uint32 = 0x53565931
	// FormatVersion is the current container format version.
	FormatVersion uint32 = 0x00010000

	// footerSize is the fixed trailer: directory offset, directory length,
	// magic again for a cheap truncation check.
	footerSize = 8 + 4 + 4
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported format version")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrCorruptFile        = errors.New("corrupt store file")
)

// tableEntry is one directory record. Column names are duplicated here so
// that Columns lookups never decompress a table block.
type tableEntry struct {
	Name    string   `json:"name"`
	Offset  int64    `json:"offset"`
	Length  int64    `json:"length"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// columnBlock is the serialized form of one column inside a table block.
// Nulls holds a serialized Roaring bitmap of missing-value row indexes.
type columnBlock struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
	Nulls  []byte `json:"nulls,omitempty"`
}

// tableBlock is the serialized form of one table.
type tableBlock struct {
	Columns []columnBlock `json:"columns"`
}
