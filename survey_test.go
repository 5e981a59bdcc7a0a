package surveygo

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/hupe1980/surveygo/config"
	"github.com/hupe1980/surveygo/dataset"
	"github.com/hupe1980/surveygo/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a Store and counts column reads per table.
type countingStore struct {
	store.Store
	columnReads map[string]int
}

func (c *countingStore) Columns(table string) ([]string, error) {
	c.columnReads[table]++
	return c.Store.Columns(table)
}

func newTestStore(t *testing.T) *store.MemStore {
	t.Helper()

	mem := store.NewMemStore()
	require.NoError(t, mem.Put("menage", dataset.New(
		dataset.Column{Name: "IDENT08", Values: []any{"0001", "0002"}},
		dataset.Column{Name: "zone", Values: []any{1.0, 2.0}},
	)))
	require.NoError(t, mem.Put("individu", dataset.New(
		dataset.Column{Name: "IDENT08", Values: []any{"0001", "0001"}},
		dataset.Column{Name: "noi", Values: []any{1.0, 2.0}},
	)))

	return mem
}

func newTestSurvey(t *testing.T, mem *store.MemStore, optFns ...Option) *Survey {
	t.Helper()

	opts := []Option{
		WithStorePath("/data/enq2020.h5"),
		WithOpener(mem.Opener()),
		WithLogger(NoopLogger()),
	}
	opts = append(opts, optFns...)

	s, err := New("enq2020", opts...)
	require.NoError(t, err)
	s.InsertTable("menage", nil)
	s.InsertTable("individu", nil)

	return s
}

func TestNew(t *testing.T) {
	t.Run("RequiresName", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrMissingName)
	})

	t.Run("KeepsExtraMetadata", func(t *testing.T) {
		s, err := New("enq2020",
			WithLabel("Enquête logement 2020"),
			WithInformation("stata_files", []string{"menage.dta"}),
			WithInformation("year", 2020),
		)
		require.NoError(t, err)

		assert.Equal(t, "enq2020", s.Name())
		assert.Equal(t, "Enquête logement 2020", s.Label())
		assert.Equal(t, map[string]any{
			"stata_files": []string{"menage.dta"},
			"year":        2020,
		}, s.Informations())
		assert.Empty(t, s.Tables())
	})

	t.Run("IndependentInstances", func(t *testing.T) {
		s1, err := New("a")
		require.NoError(t, err)
		s2, err := New("b")
		require.NoError(t, err)

		s1.InsertTable("menage", nil)
		assert.Empty(t, s2.Tables())
	})
}

func TestInsertTable(t *testing.T) {
	s, err := New("enq2020")
	require.NoError(t, err)

	s.InsertTable("menage", map[string]string{"label": "ménages"})
	s.InsertTable("menage", map[string]string{"Rdata_table": "m2020"})

	d, ok := s.Table("menage")
	require.True(t, ok)
	assert.Equal(t, Descriptor{"label": "ménages", "Rdata_table": "m2020"}, d)
}

func TestGetColumns(t *testing.T) {
	mem := newTestStore(t)
	s := newTestSurvey(t, mem)

	t.Run("OrderedColumns", func(t *testing.T) {
		cols, err := s.GetColumns("menage")
		require.NoError(t, err)
		assert.Equal(t, []string{"IDENT08", "zone"}, cols)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		_, err := s.GetColumns("")
		assert.ErrorIs(t, err, ErrMissingTable)
	})

	t.Run("AbsentFromStore", func(t *testing.T) {
		_, err := s.GetColumns("logement")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("NoStorePath", func(t *testing.T) {
		bare, err := New("enq2020", WithLogger(NoopLogger()))
		require.NoError(t, err)

		_, err = bare.GetColumns("menage")
		assert.ErrorIs(t, err, ErrNoStorePath)
	})
}

func TestFindTables(t *testing.T) {
	t.Run("SubsetContainingVariable", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		found, err := s.FindTables("zone", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"menage"}, found)

		found, err = s.FindTables("IDENT08", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"individu", "menage"}, found)
	})

	t.Run("CandidateOrderPreserved", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		found, err := s.FindTables("IDENT08", []string{"menage", "individu"})
		require.NoError(t, err)
		assert.Equal(t, []string{"menage", "individu"}, found)
	})

	t.Run("RequiresVariable", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		_, err := s.FindTables("", nil)
		assert.ErrorIs(t, err, ErrMissingVariable)
	})

	t.Run("ColumnsReadOncePerTable", func(t *testing.T) {
		mem := newTestStore(t)
		counting := &countingStore{Store: mem, columnReads: make(map[string]int)}

		s := newTestSurvey(t, mem, WithOpener(func(string) (store.Store, error) {
			return counting, nil
		}))

		for range 3 {
			_, err := s.FindTables("zone", nil)
			require.NoError(t, err)
		}

		assert.Equal(t, map[string]int{"menage": 1, "individu": 1}, counting.columnReads)
	})
}

func TestGetValues(t *testing.T) {
	t.Run("FullTableNormalized", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		ds, err := s.GetValues("menage", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"ident", "zone"}, ds.Columns())

		ident, ok := ds.Column("ident")
		require.True(t, ok)
		assert.Equal(t, []any{"0001", "0002"}, ident.Values)
	})

	t.Run("KeepCase", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		ds, err := s.GetValues("menage", nil, KeepCase(), KeepIdent())
		require.NoError(t, err)
		assert.Equal(t, []string{"IDENT08", "zone"}, ds.Columns())
	})

	t.Run("OnlyFirstIdentMatchRenamed", func(t *testing.T) {
		mem := store.NewMemStore()
		require.NoError(t, mem.Put("menage", dataset.New(
			dataset.Column{Name: "IDENT08", Values: []any{"a"}},
			dataset.Column{Name: "ident09", Values: []any{"b"}},
		)))
		s := newTestSurvey(t, mem)

		ds, err := s.GetValues("menage", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"ident", "ident09"}, ds.Columns())
	})

	t.Run("SelectedVariables", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		ds, err := s.GetValues("menage", []string{"zone"})
		require.NoError(t, err)
		assert.Equal(t, []string{"zone"}, ds.Columns())
	})

	t.Run("MissingVariables", func(t *testing.T) {
		mem := store.NewMemStore()
		require.NoError(t, mem.Put("t", dataset.New(
			dataset.Column{Name: "a", Values: []any{1.0}},
			dataset.Column{Name: "c", Values: []any{2.0}},
		)))
		s := newTestSurvey(t, mem)

		_, err := s.GetValues("t", []string{"a", "b"})

		var mv *MissingVariablesError
		require.ErrorAs(t, err, &mv)
		assert.Equal(t, "t", mv.Table)
		assert.Equal(t, []string{"b"}, mv.Missing)
	})

	t.Run("RdataAlias", func(t *testing.T) {
		mem := store.NewMemStore()
		require.NoError(t, mem.Put("m2020", dataset.New(
			dataset.Column{Name: "zone", Values: []any{1.0}},
		)))
		s := newTestSurvey(t, mem)
		s.InsertTable("menage", map[string]string{"Rdata_table": "m2020"})

		ds, err := s.GetValues("menage", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"zone"}, ds.Columns())
	})

	t.Run("Unresolvable", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		_, err := s.GetValues("logement", nil)
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestGetValue(t *testing.T) {
	t.Run("RequiresVariable", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		_, err := s.GetValue("", "menage")
		assert.ErrorIs(t, err, ErrMissingVariable)
	})

	t.Run("SingleColumn", func(t *testing.T) {
		s := newTestSurvey(t, newTestStore(t))

		ds, err := s.GetValue("zone", "menage")
		require.NoError(t, err)
		assert.Equal(t, []string{"zone"}, ds.Columns())
	})

	t.Run("UnknownTableKeyLogsButProceeds", func(t *testing.T) {
		mem := store.NewMemStore()
		require.NoError(t, mem.Put("menage", dataset.New(
			dataset.Column{Name: "zone", Values: []any{1.0}},
		)))

		var buf bytes.Buffer
		logger := NewLogger(slog.NewTextHandler(&buf, nil))

		s, err := New("enq2020",
			WithStorePath("/data/enq2020.h5"),
			WithOpener(mem.Opener()),
			WithLogger(logger),
		)
		require.NoError(t, err)

		// "menage" is in the store but not in the survey's table mapping.
		ds, err := s.GetValue("zone", "menage")
		require.NoError(t, err)
		assert.Equal(t, []string{"zone"}, ds.Columns())
		assert.Contains(t, buf.String(), "table not found in survey tables")
	})
}

func TestFillStore(t *testing.T) {
	type conversion struct {
		table    Table
		dataFile string
	}

	capture := func(dst *[]conversion) Converter {
		return ConverterFunc(func(table *Table, dataFile string) error {
			*dst = append(*dst, conversion{table: *table, dataFile: dataFile})
			return nil
		})
	}

	t.Run("ResolvesFormatsByExtension", func(t *testing.T) {
		var got []conversion

		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithStorePath("/data/enq2020.h5"),
			WithConverter(capture(&got)),
			WithInformation("stata_files", []string{"raw/menage.dta"}),
			WithInformation("sas_files", []string{"raw/individu.sas7bdat"}),
			WithInformation("Rdata_files", []string{"raw/logement.Rdata"}),
		)
		require.NoError(t, err)

		require.NoError(t, s.FillStore(""))
		require.Len(t, got, 3)

		// Fixed format order: stata, sas, spss, Rdata.
		assert.Equal(t, "menage", got[0].table.Name)
		assert.Equal(t, "stata", got[0].table.SourceFormat)
		assert.Equal(t, "raw/menage.dta", got[0].dataFile)

		assert.Equal(t, "individu", got[1].table.Name)
		assert.Equal(t, "sas", got[1].table.SourceFormat)

		assert.Equal(t, "logement", got[2].table.Name)
		assert.Equal(t, "Rdata", got[2].table.SourceFormat)

		assert.Same(t, s, got[0].table.Survey)
	})

	t.Run("SingleFormat", func(t *testing.T) {
		var got []conversion

		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithStorePath("/data/enq2020.h5"),
			WithConverter(capture(&got)),
			WithInformation("stata_files", []string{"menage.dta"}),
			WithInformation("sas_files", []string{"individu.sas7bdat"}),
		)
		require.NoError(t, err)

		require.NoError(t, s.FillStore("stata"))
		require.Len(t, got, 1)
		assert.Equal(t, "menage", got[0].table.Name)
	})

	t.Run("DerivesStorePath", func(t *testing.T) {
		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithConfig(config.Static("/data/out")),
			WithInformation("stata_files", []string{"menage.dta"}),
		)
		require.NoError(t, err)
		require.Empty(t, s.StorePath())

		require.NoError(t, s.FillStore("stata"))
		assert.Equal(t, filepath.Join("/data/out", "enq2020.h5"), s.StorePath())
	})

	t.Run("NoConfiguredOutputDirectory", func(t *testing.T) {
		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithConfig(config.Static("")),
			WithInformation("stata_files", []string{"menage.dta"}),
		)
		require.NoError(t, err)

		err = s.FillStore("stata")
		assert.ErrorIs(t, err, config.ErrNoOutputDirectory)
	})

	t.Run("UnsupportedExtension", func(t *testing.T) {
		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithStorePath("/data/enq2020.h5"),
			WithInformation("stata_files", []string{"menage.csv"}),
		)
		require.NoError(t, err)

		err = s.FillStore("stata")

		var uf *UnsupportedFormatError
		require.ErrorAs(t, err, &uf)
		assert.Equal(t, "csv", uf.Extension)
	})

	t.Run("ConverterFailureAborts", func(t *testing.T) {
		boom := errors.New("boom")

		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithStorePath("/data/enq2020.h5"),
			WithConverter(ConverterFunc(func(*Table, string) error { return boom })),
			WithInformation("stata_files", []string{"menage.dta"}),
		)
		require.NoError(t, err)

		assert.ErrorIs(t, s.FillStore(""), boom)
	})

	t.Run("FileListFromDeserializedRecord", func(t *testing.T) {
		var got []conversion

		// Record deserialization yields []any, not []string.
		s, err := New("enq2020",
			WithLogger(NoopLogger()),
			WithStorePath("/data/enq2020.h5"),
			WithConverter(capture(&got)),
			WithInformation("stata_files", []any{"menage.dta"}),
		)
		require.NoError(t, err)

		require.NoError(t, s.FillStore("stata"))
		assert.Len(t, got, 1)
	})
}

func TestDescribe(t *testing.T) {
	s, err := New("enq2020",
		WithLabel("Enquête logement 2020"),
		WithInformation("year", 2020),
	)
	require.NoError(t, err)
	s.InsertTable("menage", nil)

	out := s.Describe()
	assert.Contains(t, out, "enq2020 : survey data Enquête logement 2020")
	assert.Contains(t, out, "menage")
	assert.Contains(t, out, "year: 2020")
}

func TestCollection(t *testing.T) {
	c := NewCollection("logement", "Enquêtes logement")

	s, err := New("enq2020", WithLogger(NoopLogger()))
	require.NoError(t, err)
	c.Add(s)

	assert.Same(t, c, s.Collection())

	got, ok := c.Get("enq2020")
	require.True(t, ok)
	assert.Same(t, s, got)
}
