package surveygo

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/surveygo/config"
	"github.com/hupe1980/surveygo/dataset"
	"github.com/hupe1980/surveygo/store"
	"gopkg.in/yaml.v2"
)

// identRe matches year-suffixed identifier columns such as ident08 or
// IDENT2024.
var identRe = regexp.MustCompile(`(?i)^ident\d{2,4}$`)

// Survey describes one survey: a set of tables backed by a columnar store,
// plus metadata about the raw source files feeding it.
//
// A Survey is not safe for concurrent mutation. The columns index is a lazy
// per-instance cache that is never invalidated; a writer that changes the
// store schema after a table was indexed produces stale lookups silently.
type Survey struct {
	name         string
	label        string
	storePath    string
	collection   *Collection
	tables       map[string]Descriptor
	tablesIndex  map[string][]string
	informations map[string]any

	logger    *Logger
	opener    store.Opener
	config    config.Provider
	converter Converter
}

// New creates a Survey. The name is required and immutable afterwards.
func New(name string, optFns ...Option) (*Survey, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	s := &Survey{
		name:         name,
		tables:       make(map[string]Descriptor),
		tablesIndex:  make(map[string][]string),
		informations: make(map[string]any),
		logger:       NewLogger(nil),
		opener:       store.OpenFile,
		config:       config.FromEnv(),
	}
	for _, fn := range optFns {
		fn(s)
	}

	return s, nil
}

// Name returns the survey name.
func (s *Survey) Name() string { return s.name }

// Label returns the human-readable label, possibly empty.
func (s *Survey) Label() string { return s.label }

// StorePath returns the path of the backing store, possibly still unset.
func (s *Survey) StorePath() string { return s.storePath }

// Collection returns the owning collection, or nil.
func (s *Survey) Collection() *Collection { return s.collection }

// Tables returns the table names in sorted order.
func (s *Survey) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the descriptor of the named table, or false if absent.
func (s *Survey) Table(name string) (Descriptor, bool) {
	d, ok := s.tables[name]
	return d, ok
}

// Informations returns the free-form metadata bag. The returned map is the
// survey's own; treat it as read-only.
func (s *Survey) Informations() map[string]any { return s.informations }

// InsertTable adds the named table if absent and merges the given descriptor
// fields, last write winning per key.
func (s *Survey) InsertTable(name string, fields map[string]string) {
	d, ok := s.tables[name]
	if !ok {
		d = make(Descriptor)
		s.tables[name] = d
	}
	for k, v := range fields {
		d[k] = v
	}
}

// Describe returns a human-readable multi-line summary: a header with name
// and label, the table names, and the metadata bag as YAML blocks. Display
// only, not a parseable contract.
func (s *Survey) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s : survey data %s\n", s.name, s.label)
	b.WriteString("Contains the following tables :\n")

	tables, _ := yaml.Marshal(s.Tables())
	b.Write(tables)

	informations, _ := yaml.Marshal(s.informations)
	b.Write(informations)

	return b.String()
}

// FillStore ingests the survey's declared source files into the store. An
// empty sourceFormat processes all formats in the fixed order stata, sas,
// spss, Rdata; otherwise only the given one.
//
// Conversion itself is delegated to the configured Converter; with none set,
// FillStore still derives a missing store path and validates extensions.
func (s *Survey) FillStore(sourceFormat string) error {
	formats := sourceFormats
	if sourceFormat != "" {
		formats = []string{sourceFormat}
	}

	for _, format := range formats {
		for _, dataFile := range s.sourceFiles(format + "_files") {
			ext := strings.TrimPrefix(filepath.Ext(dataFile), ".")
			base := strings.TrimSuffix(filepath.Base(dataFile), filepath.Ext(dataFile))

			if s.storePath == "" {
				dir, err := s.config.OutputDirectory()
				if err != nil {
					return err
				}
				s.storePath = filepath.Join(dir, s.name+".h5")
				s.logger.LogStorePath(s.storePath)
			}

			resolved, ok := sourceFormatByExtension[ext]
			if !ok {
				return &UnsupportedFormatError{Extension: ext}
			}

			table := &Table{
				Label:        base,
				Name:         base,
				SourceFormat: resolved,
				Survey:       s,
			}

			if s.converter != nil {
				err := s.converter.Convert(table, dataFile)
				s.logger.LogConvert(table.Name, dataFile, err)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// sourceFiles reads a "{format}_files" entry from the metadata bag, tolerating
// both []string and the []any produced by record deserialization.
func (s *Survey) sourceFiles(key string) []string {
	switch v := s.informations[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// GetColumns returns the ordered column names of the named table as currently
// stored. It does not populate the columns index.
func (s *Survey) GetColumns(table string) ([]string, error) {
	if table == "" {
		return nil, ErrMissingTable
	}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if !st.Has(table) {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	columns, err := st.Columns(table)
	if err != nil {
		return nil, err
	}

	s.logger.LogColumnsIndex(table, len(columns))

	return columns, nil
}

// FindTables returns the candidate tables whose columns contain the given
// variable, in candidate order. A nil candidates slice means all of the
// survey's tables, in sorted order.
//
// Column sets are read from the store at most once per table per Survey
// instance and cached for its remaining lifetime.
func (s *Survey) FindTables(variable string, candidates []string) ([]string, error) {
	if variable == "" {
		return nil, ErrMissingVariable
	}

	if candidates == nil {
		candidates = s.Tables()
	}

	var found []string
	for _, table := range candidates {
		columns, ok := s.tablesIndex[table]
		if !ok {
			var err error
			columns, err = s.GetColumns(table)
			if err != nil {
				return nil, err
			}
			s.tablesIndex[table] = columns
		}
		if slices.Contains(columns, variable) {
			found = append(found, table)
		}
	}

	return found, nil
}

// GetValue returns a single-variable dataset from the named table.
//
// A table absent from the survey's table mapping is logged but not fatal:
// retrieval may still succeed against the store directly.
func (s *Survey) GetValue(variable, table string) (*dataset.Dataset, error) {
	if variable == "" {
		return nil, ErrMissingVariable
	}

	if _, ok := s.tables[table]; !ok {
		s.logger.LogUnknownTable(table)
	}

	return s.GetValues(table, []string{variable})
}

// GetValues reads the named table from the store, resolving the physical
// table either directly or via the descriptor's Rdata_table alias.
//
// By default every column name is lowercased (last write wins on collision)
// and the first column matching the ident pattern (e.g. ident08) is renamed
// to "ident"; only the first match is renamed, even if several qualify. A nil
// variables slice returns the full table; otherwise all requested variables
// must be present, and the result holds exactly the requested columns (set
// semantics, sorted).
func (s *Survey) GetValues(table string, variables []string, optFns ...ReadOption) (*dataset.Dataset, error) {
	opts := readOptions{lowercase: true, renameIdent: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	physical, err := s.resolveTable(st, table)
	if err != nil {
		return nil, err
	}

	ds, err := st.Get(physical)
	if err != nil {
		return nil, err
	}

	if opts.lowercase {
		mapping := make(map[string]string)
		for _, name := range ds.Columns() {
			mapping[name] = strings.ToLower(name)
		}
		ds.RenameColumns(mapping)
	}

	if opts.renameIdent {
		for _, name := range ds.Columns() {
			if identRe.MatchString(name) {
				ds.Rename(name, "ident")
				s.logger.LogIdentRename(name)
				break
			}
		}
	}

	if variables == nil {
		return ds, nil
	}

	present := ds.Columns()
	var missing, keep []string
	for _, v := range variables {
		if slices.Contains(present, v) {
			keep = append(keep, v)
		} else {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingVariablesError{Table: table, Missing: missing}
	}

	sort.Strings(keep)
	keep = slices.Compact(keep)

	return ds.Select(keep...)
}

// resolveTable tries the table name directly against the store, then the
// descriptor's Rdata_table alias.
func (s *Survey) resolveTable(st store.Store, table string) (string, error) {
	if st.Has(table) {
		return table, nil
	}
	if d, ok := s.tables[table]; ok {
		if alias := d[rdataTableKey]; alias != "" && st.Has(alias) {
			return alias, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTableNotFound, table)
}

func (s *Survey) openStore() (store.Store, error) {
	if s.storePath == "" {
		return nil, ErrNoStorePath
	}
	return s.opener(s.storePath)
}
