package surveygo

import (
	"github.com/hupe1980/surveygo/config"
	"github.com/hupe1980/surveygo/store"
)

// Option configures Survey construction.
type Option func(*Survey)

// WithLabel sets a human-readable label.
func WithLabel(label string) Option {
	return func(s *Survey) {
		s.label = label
	}
}

// WithStorePath sets the path of the backing columnar store. When unset, the
// path is derived from the configured output directory on first ingestion.
func WithStorePath(path string) Option {
	return func(s *Survey) {
		s.storePath = path
	}
}

// WithCollection sets the owning collection back-reference.
func WithCollection(c *Collection) Option {
	return func(s *Survey) {
		s.collection = c
	}
}

// WithInformation stores one extra metadata key verbatim in the survey's
// metadata bag. Keys of the form "{format}_files" list source files for
// ingestion.
func WithInformation(key string, value any) Option {
	return func(s *Survey) {
		s.informations[key] = value
	}
}

// WithInformations merges a metadata map into the survey's metadata bag.
func WithInformations(informations map[string]any) Option {
	return func(s *Survey) {
		for k, v := range informations {
			s.informations[k] = v
		}
	}
}

// WithLogger sets the logging sink. Defaults to a text logger on stderr; use
// NoopLogger to silence a survey, or a captured handler in tests.
func WithLogger(logger *Logger) Option {
	return func(s *Survey) {
		if logger == nil {
			logger = NoopLogger()
		}
		s.logger = logger
	}
}

// WithOpener sets how the backing store is opened. Defaults to the file
// store.
func WithOpener(opener store.Opener) Option {
	return func(s *Survey) {
		if opener == nil {
			opener = store.OpenFile
		}
		s.opener = opener
	}
}

// WithConfig sets the provider of the output directory used to derive a
// missing store path. Defaults to the environment provider.
func WithConfig(provider config.Provider) Option {
	return func(s *Survey) {
		if provider == nil {
			provider = config.FromEnv()
		}
		s.config = provider
	}
}

// WithConverter sets the source-file converter invoked by FillStore. A nil
// converter limits FillStore to descriptor construction and path derivation.
func WithConverter(converter Converter) Option {
	return func(s *Survey) {
		s.converter = converter
	}
}

// ReadOption configures GetValues normalization.
type ReadOption func(*readOptions)

type readOptions struct {
	lowercase   bool
	renameIdent bool
}

// KeepCase disables the default lowercasing of column names.
func KeepCase() ReadOption {
	return func(o *readOptions) {
		o.lowercase = false
	}
}

// KeepIdent disables the default renaming of the first year-suffixed ident
// column (e.g. ident08) to "ident".
func KeepIdent() ReadOption {
	return func(o *readOptions) {
		o.renameIdent = false
	}
}
