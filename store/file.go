package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/surveygo/codec"
	"github.com/hupe1980/surveygo/dataset"
)

// FileStore is a single-file columnar store.
//
// Layout: a fixed header (magic, version, compression, codec name), one
// compressed block per table, a codec-encoded directory, and a fixed footer
// pointing at the directory. Files are self-describing: the header records
// the codec and compression they were written with.
//
// Writes rewrite the whole file through a temp file and an atomic rename;
// survey tables are small enough that this beats in-place mutation. Numeric
// values round-trip through the codec, so integers read back as float64
// (JSON number semantics).
type FileStore struct {
	path        string
	codec       codec.Codec
	compression Compression
	f           *os.File
	entries     map[string]tableEntry
	order       []string
}

// FileOptions configure a FileStore.
type FileOptions struct {
	// Codec encodes table blocks and the directory. Defaults to codec.Default.
	// Ignored when opening an existing file, which records its own codec.
	Codec codec.Codec
	// Compression is the block compression for newly written files.
	Compression Compression
}

// FileOption configures FileStore open behavior.
type FileOption func(*FileOptions)

// WithCodec sets the codec used for newly created files.
func WithCodec(c codec.Codec) FileOption {
	return func(o *FileOptions) {
		if c == nil {
			c = codec.Default
		}
		o.Codec = c
	}
}

// WithCompression sets the block compression for newly created files.
func WithCompression(c Compression) FileOption {
	return func(o *FileOptions) {
		o.Compression = c
	}
}

// Open opens the store file at path, creating an empty store if the file does
// not exist yet. The file is only created on the first Put.
func Open(path string, optFns ...FileOption) (*FileStore, error) {
	opts := FileOptions{
		Codec:       codec.Default,
		Compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &FileStore{
		path:        path,
		codec:       opts.Codec,
		compression: opts.Compression,
		entries:     make(map[string]tableEntry),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}

	if err := s.readHeader(f); err != nil {
		f.Close()
		return err
	}

	if err := s.readDirectory(f); err != nil {
		f.Close()
		return err
	}

	s.f = f

	return nil
}

func (s *FileStore) readHeader(f *os.File) error {
	var fixed struct {
		Magic       uint32
		Version     uint32
		Compression uint8
		NameLen     uint8
	}
	if err := binary.Read(f, binary.LittleEndian, &fixed); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	if fixed.Magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, fixed.Magic)
	}
	if fixed.Version != FormatVersion {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, fixed.Version)
	}

	name := make([]byte, fixed.NameLen)
	if _, err := io.ReadFull(f, name); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	c, ok := codec.ByName(string(name))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, string(name))
	}
	s.codec = c

	switch comp := Compression(fixed.Compression); comp {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
		s.compression = comp
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCompression, fixed.Compression)
	}

	return nil
}

func (s *FileStore) readDirectory(f *os.File) error {
	end, err := f.Seek(-footerSize, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	var footer struct {
		DirOffset uint64
		DirLength uint32
		Magic     uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &footer); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	if footer.Magic != MagicNumber {
		return fmt.Errorf("%w: bad footer magic", ErrCorruptFile)
	}
	if footer.DirOffset+uint64(footer.DirLength) > uint64(end) {
		return fmt.Errorf("%w: directory out of bounds", ErrCorruptFile)
	}

	buf := make([]byte, footer.DirLength)
	if _, err := f.ReadAt(buf, int64(footer.DirOffset)); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	var entries []tableEntry
	if err := s.codec.Unmarshal(buf, &entries); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	s.entries = make(map[string]tableEntry, len(entries))
	s.order = s.order[:0]
	for _, e := range entries {
		s.entries[e.Name] = e
		s.order = append(s.order, e.Name)
	}

	return nil
}

// Has reports whether the named table exists.
func (s *FileStore) Has(table string) bool {
	_, ok := s.entries[table]
	return ok
}

// Tables returns the table names in storage order.
func (s *FileStore) Tables() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Columns returns the ordered column names of the named table. The directory
// duplicates column names, so this never touches a table block.
func (s *FileStore) Columns(table string) ([]string, error) {
	e, ok := s.entries[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	out := make([]string, len(e.Columns))
	copy(out, e.Columns)
	return out, nil
}

// Get reads the named table as a dataset.
func (s *FileStore) Get(table string) (*dataset.Dataset, error) {
	e, ok := s.entries[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	block := make([]byte, e.Length)
	if _, err := s.f.ReadAt(block, e.Offset); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	data, err := decompressBlock(block, s.compression)
	if err != nil {
		return nil, err
	}

	var tb tableBlock
	if err := s.codec.Unmarshal(data, &tb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	cols := make([]dataset.Column, 0, len(tb.Columns))
	for _, cb := range tb.Columns {
		col := dataset.Column{Name: cb.Name, Values: cb.Values}
		if len(cb.Nulls) > 0 {
			nulls := roaring.New()
			if err := nulls.UnmarshalBinary(cb.Nulls); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
			}
			col.Nulls = nulls
		}
		cols = append(cols, col)
	}

	return dataset.New(cols...), nil
}

// Put writes or replaces the named table, rewriting the file atomically.
func (s *FileStore) Put(table string, ds *dataset.Dataset) error {
	// Materialize surviving tables before the rewrite invalidates offsets.
	tables := make(map[string]*dataset.Dataset, len(s.order)+1)
	order := make([]string, 0, len(s.order)+1)
	for _, name := range s.order {
		if name == table {
			continue
		}
		existing, err := s.Get(name)
		if err != nil {
			return err
		}
		tables[name] = existing
		order = append(order, name)
	}
	tables[table] = ds
	order = append(order, table)

	if err := s.rewrite(tables, order); err != nil {
		return err
	}

	return s.load()
}

func (s *FileStore) rewrite(tables map[string]*dataset.Dataset, order []string) error {
	if s.f != nil {
		s.f.Close()
		s.f = nil
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	abort := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}

	offset, err := s.writeHeader(f)
	if err != nil {
		return abort(err)
	}

	entries := make([]tableEntry, 0, len(order))
	for _, name := range order {
		ds := tables[name]

		block, err := s.encodeTable(ds)
		if err != nil {
			return abort(err)
		}
		if _, err := f.Write(block); err != nil {
			return abort(err)
		}

		entries = append(entries, tableEntry{
			Name:    name,
			Offset:  offset,
			Length:  int64(len(block)),
			Rows:    ds.Len(),
			Columns: ds.Columns(),
		})
		offset += int64(len(block))
	}

	dir, err := s.codec.Marshal(entries)
	if err != nil {
		return abort(err)
	}
	if _, err := f.Write(dir); err != nil {
		return abort(err)
	}

	footer := struct {
		DirOffset uint64
		DirLength uint32
		Magic     uint32
	}{
		DirOffset: uint64(offset),
		DirLength: uint32(len(dir)),
		Magic:     MagicNumber,
	}
	if err := binary.Write(f, binary.LittleEndian, footer); err != nil {
		return abort(err)
	}

	if err := f.Sync(); err != nil {
		return abort(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}

	return syncDir(filepath.Dir(s.path))
}

func (s *FileStore) writeHeader(f *os.File) (int64, error) {
	name := []byte(s.codec.Name())

	fixed := struct {
		Magic       uint32
		Version     uint32
		Compression uint8
		NameLen     uint8
	}{
		Magic:       MagicNumber,
		Version:     FormatVersion,
		Compression: uint8(s.compression),
		NameLen:     uint8(len(name)),
	}
	if err := binary.Write(f, binary.LittleEndian, fixed); err != nil {
		return 0, err
	}
	if _, err := f.Write(name); err != nil {
		return 0, err
	}

	return int64(4 + 4 + 1 + 1 + len(name)), nil
}

func (s *FileStore) encodeTable(ds *dataset.Dataset) ([]byte, error) {
	tb := tableBlock{Columns: make([]columnBlock, 0, ds.NumColumns())}
	for _, name := range ds.Columns() {
		col, _ := ds.Column(name)
		cb := columnBlock{Name: col.Name, Values: col.Values}
		if col.Nulls != nil && !col.Nulls.IsEmpty() {
			nulls, err := col.Nulls.MarshalBinary()
			if err != nil {
				return nil, err
			}
			cb.Nulls = nulls
		}
		tb.Columns = append(tb.Columns, cb)
	}

	data, err := s.codec.Marshal(tb)
	if err != nil {
		return nil, err
	}

	return compressBlock(data, s.compression)
}

// Close releases the store handle.
func (s *FileStore) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
