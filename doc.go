// Package surveygo models survey data: named collections of tabular datasets
// backed by a columnar store file, plus the metadata describing where the raw
// source files live and how they map into that store.
//
// A Survey owns a name, an optional label, the path of its backing store, a
// table-name to descriptor mapping, and a free-form metadata bag. Lookups open
// the store on demand and cache each table's column names for the lifetime of
// the Survey instance.
//
// # Quick Start
//
//	s, err := surveygo.New("enq2020",
//	    surveygo.WithLabel("Enquête logement 2020"),
//	    surveygo.WithStorePath("/data/enq2020.h5"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	// Which tables carry the variable "zone"?
//	tables, err := s.FindTables("zone", nil)
//
//	// Read a table, normalized: columns lowercased and the year-suffixed
//	// identifier column (e.g. IDENT08) renamed to "ident".
//	ds, err := s.GetValues("menage", nil)
//
// Surveys serialize to a stable record form:
//
//	rec := s.ToRecord()
//	s2, err := surveygo.FromRecord(rec)
//
// Ingestion of proprietary source files (SAS, Stata, SPSS, Rdata) is delegated
// to a Converter collaborator; FillStore only orchestrates which files go
// where. See the config package for output directory resolution, the store
// package for the container format, and the sourcefile package for fetching
// remote source files.
package surveygo
