package surveygo

// sourceFormats is the fixed processing order of FillStore when no format is
// requested.
var sourceFormats = []string{"stata", "sas", "spss", "Rdata"}

// sourceFormatByExtension maps a source file extension to its format name.
var sourceFormatByExtension = map[string]string{
	"sas7bdat": "sas",
	"dta":      "stata",
	"Rdata":    "Rdata",
	"spss":     "sav",
}

// SourceFormats returns the supported source formats in processing order.
func SourceFormats() []string {
	out := make([]string, len(sourceFormats))
	copy(out, sourceFormats)
	return out
}
