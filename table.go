package surveygo

// Descriptor is the metadata record of a table within a survey. Keys are
// free-form; "Rdata_table" is recognized as a physical-name override when
// resolving a table in the store.
type Descriptor map[string]string

// rdataTableKey is the descriptor key aliasing a table to its physical name.
const rdataTableKey = "Rdata_table"

// Table describes one table scheduled for ingestion: where it came from and
// which survey it belongs to.
type Table struct {
	Label        string
	Name         string
	SourceFormat string
	Survey       *Survey
}

// Converter performs the actual source-file to store conversion. Parsing of
// proprietary statistical formats lives behind this interface.
type Converter interface {
	// Convert ingests dataFile into the store of table.Survey.
	Convert(table *Table, dataFile string) error
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(table *Table, dataFile string) error

// Convert implements Converter.
func (f ConverterFunc) Convert(table *Table, dataFile string) error {
	return f(table, dataFile)
}
