// Package dataset provides a small column-labeled dataset, the in-memory form
// of a survey table read from a store.
package dataset

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrColumnNotFound is returned when a requested column is absent.
var ErrColumnNotFound = errors.New("column not found in dataset")

// Column is a named slice of values with an optional null mask.
//
// The null mask records row indexes whose value is missing in the source
// data. A nil mask means the column has no missing values.
type Column struct {
	Name   string
	Values []any
	Nulls  *roaring.Bitmap
}

// IsNull reports whether the value at row i is missing.
func (c *Column) IsNull(i int) bool {
	return c.Nulls != nil && c.Nulls.ContainsInt(i)
}

// SetNull marks the value at row i as missing.
func (c *Column) SetNull(i int) {
	if c.Nulls == nil {
		c.Nulls = roaring.New()
	}
	c.Nulls.AddInt(i)
}

func (c Column) clone() Column {
	out := Column{Name: c.Name}
	if c.Values != nil {
		out.Values = make([]any, len(c.Values))
		copy(out.Values, c.Values)
	}
	if c.Nulls != nil {
		out.Nulls = c.Nulls.Clone()
	}
	return out
}

// Dataset is an ordered collection of columns.
//
// Column order is significant: it is the order columns were stored in, and
// lookup passes (such as ident normalization) scan columns in this order.
type Dataset struct {
	cols []Column
}

// New creates a dataset from the given columns, keeping their order.
func New(cols ...Column) *Dataset {
	d := &Dataset{}
	for _, c := range cols {
		d.Add(c)
	}
	return d
}

// Len returns the number of rows, taken from the first column.
func (d *Dataset) Len() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0].Values)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.cols) }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns a pointer to the named column, or false if absent.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.cols {
		if d.cols[i].Name == name {
			return &d.cols[i], true
		}
	}
	return nil, false
}

// Add appends a column. An existing column with the same name is replaced in
// place.
func (d *Dataset) Add(c Column) {
	for i := range d.cols {
		if d.cols[i].Name == c.Name {
			d.cols[i] = c
			return
		}
	}
	d.cols = append(d.cols, c)
}

// RenameColumns applies the mapping to column names, preserving column order.
// When two columns end up with the same final name, the later column wins and
// occupies the earlier position.
func (d *Dataset) RenameColumns(mapping map[string]string) {
	out := d.cols[:0:0]
	index := make(map[string]int, len(d.cols))
	for _, c := range d.cols {
		if to, ok := mapping[c.Name]; ok {
			c.Name = to
		}
		if i, ok := index[c.Name]; ok {
			out[i] = c
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c)
	}
	d.cols = out
}

// Rename renames a single column. It reports whether the column existed.
func (d *Dataset) Rename(old, new string) bool {
	if _, ok := d.Column(old); !ok {
		return false
	}
	if old != new {
		d.RenameColumns(map[string]string{old: new})
	}
	return true
}

// Select returns a new dataset containing exactly the named columns, in the
// given order. Columns are deep-copied so the selection can be mutated freely.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	out := &Dataset{cols: make([]Column, 0, len(names))}
	for _, name := range names {
		c, ok := d.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		out.cols = append(out.cols, c.clone())
	}
	return out, nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{cols: make([]Column, len(d.cols))}
	for i, c := range d.cols {
		out.cols[i] = c.clone()
	}
	return out
}
