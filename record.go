package surveygo

import (
	"github.com/hupe1980/surveygo/codec"
)

// Record is the serialized form of a Survey. Field order is the stable wire
// order; map keys marshal sorted, which canonicalizes the metadata bag.
type Record struct {
	StorePath    string                `json:"store_path"`
	Label        string                `json:"label"`
	Name         string                `json:"name"`
	Tables       map[string]Descriptor `json:"tables"`
	Informations map[string]any        `json:"informations"`
}

// ToRecord produces the survey's record form. Maps are copied, so mutating
// the record leaves the survey untouched.
func (s *Survey) ToRecord() Record {
	tables := make(map[string]Descriptor, len(s.tables))
	for name, d := range s.tables {
		cp := make(Descriptor, len(d))
		for k, v := range d {
			cp[k] = v
		}
		tables[name] = cp
	}

	informations := make(map[string]any, len(s.informations))
	for k, v := range s.informations {
		informations[k] = v
	}

	return Record{
		StorePath:    s.storePath,
		Label:        s.label,
		Name:         s.name,
		Tables:       tables,
		Informations: informations,
	}
}

// FromRecord rebuilds a Survey from its record form. Descriptor shapes are
// not validated here; malformed descriptors surface later at lookup time.
func FromRecord(rec Record, optFns ...Option) (*Survey, error) {
	opts := []Option{
		WithLabel(rec.Label),
		WithStorePath(rec.StorePath),
		WithInformations(rec.Informations),
	}
	opts = append(opts, optFns...)

	s, err := New(rec.Name, opts...)
	if err != nil {
		return nil, err
	}

	for name, d := range rec.Tables {
		s.InsertTable(name, d)
	}

	return s, nil
}

// MarshalJSON serializes the survey via its record form.
func (s *Survey) MarshalJSON() ([]byte, error) {
	return codec.Default.Marshal(s.ToRecord())
}

// DecodeRecord decodes a serialized record.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := codec.Default.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
