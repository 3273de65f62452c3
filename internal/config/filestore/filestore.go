// Package filestore implements config.Store backed by a single file in any
// of the supported encodings.
//
// A Store loads its file on construction, fills missing keys from a default
// template and rewrites the file when the template injected anything. Reads
// and writes are best effort: I/O failures never surface as errors from the
// key API, they degrade to defaults and are reported on the logger instead.
// ReadDocument and WriteDocument offer the same encodings with explicit
// errors for callers that need them.
//
// A Store is not safe for concurrent use; callers serialize access to one
// instance. Saves from different instances are serialized by a lock file.
package filestore

import (
	"os"
	"strings"
	"time"

	"cfgstore/internal/config"
	"cfgstore/internal/config/codec"
	"cfgstore/internal/log"

	"github.com/rs/zerolog"
)

// Store implements config.Store using a file on disk.
type Store struct {
	path       string
	format     config.Format
	doc        *config.Document
	wellFormed bool

	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic sink. Entries are tagged component=config.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = log.WithComponent(l, "config")
	}
}

// WithClock overrides the time source used for properties headers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store for path and loads it immediately. format may be
// config.Detect to pick the encoding from the file extension; defaults may
// be nil. The returned bool is the result of the initial Load.
func New(path string, format config.Format, defaults *config.Document, opts ...Option) (*Store, bool) {
	s := &Store{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	ok := s.Load(path, format, defaults)
	return s, ok
}

// Load replaces the store's state with the contents of path.
//
// A missing file is created from defaults. An existing file is decoded;
// content that cannot be decoded as a mapping is replaced by defaults, and
// any keys defaults adds are written back. Load reports false only when the
// format cannot be resolved from the extension or names no known encoding.
func (s *Store) Load(path string, format config.Format, defaults *config.Document) bool {
	s.wellFormed = true
	s.format = format
	s.path = path
	s.doc = config.NewDocument()
	if defaults == nil {
		defaults = config.NewDocument()
	}

	if _, err := os.Stat(path); err != nil {
		s.doc = defaults.Clone()
		s.logger.Debug().Str("file", path).Msg("config file missing, writing defaults")
		s.Save()
		return true
	}

	if s.format == config.Detect {
		f, ok := config.DetectFormat(path)
		if !ok {
			s.wellFormed = false
			s.logger.Debug().Str("file", path).Msg("cannot detect config format from extension")
			return false
		}
		s.format = f
	}

	c, err := s.codec()
	if err != nil {
		s.wellFormed = false
		s.logger.Debug().Err(err).Str("file", path).Msg("unsupported config format")
		return false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("file", path).Msg("reading config file")
	}

	doc, err := c.Decode(raw)
	if err != nil || doc == nil {
		s.logger.Debug().Err(err).Str("file", path).Msg("config file is not a mapping, using defaults")
		doc = defaults.Clone()
	}
	s.doc = doc

	if n := config.FillDefaults(defaults, s.doc); n > 0 {
		s.logger.Debug().Int("changes", n).Str("file", path).Msg("filled missing config keys")
		s.Save()
	}
	return true
}

// Reload discards the in-memory document and loads the file again, detecting
// the format anew.
func (s *Store) Reload() bool {
	return s.Load(s.path, config.Detect, nil)
}

// Save writes the document to the store's file. It reports false when the
// store is not well-formed or the document cannot be encoded; a failed write
// is logged and still reports true.
func (s *Store) Save() bool {
	if !s.wellFormed {
		return false
	}
	if s.format == config.Detect {
		f, ok := config.DetectFormat(s.path)
		if !ok {
			s.wellFormed = false
			s.logger.Debug().Str("file", s.path).Msg("cannot detect config format from extension")
			return false
		}
		s.format = f
	}

	c, err := s.codec()
	if err != nil {
		s.wellFormed = false
		s.logger.Debug().Err(err).Str("file", s.path).Msg("unsupported config format")
		return false
	}
	raw, err := c.Encode(s.doc)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", s.path).Msg("encoding config")
		return false
	}
	if err := writeFile(s.path, raw); err != nil {
		s.logger.Warn().Err(err).Str("file", s.path).Msg("writing config")
	}
	return true
}

// Check reports whether the store resolved a format and holds a document.
func (s *Store) Check() bool {
	return s.wellFormed
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Format returns the resolved format, or config.Detect when resolution has
// not happened yet.
func (s *Store) Format() config.Format {
	return s.format
}

// Get returns the value for key and whether it was found. A key holding nil
// counts as absent.
func (s *Store) Get(key string) (any, bool) {
	if !s.wellFormed {
		return nil, false
	}
	v, ok := s.doc.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Set upserts key in memory. Plain maps are stored as nested documents.
func (s *Store) Set(key string, value any) bool {
	if !s.wellFormed {
		return false
	}
	s.doc.Set(key, config.NormalizeValue(value))
	return true
}

// Add marks key as present by setting it to true, the enumeration
// convention.
func (s *Store) Add(key string) bool {
	return s.Set(key, true)
}

// SetAll replaces the whole document.
func (s *Store) SetAll(doc *config.Document) bool {
	if !s.wellFormed {
		return false
	}
	if doc == nil {
		doc = config.NewDocument()
	}
	s.doc = doc
	return true
}

// Exists reports whether key holds a non-nil value.
func (s *Store) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// ExistsFold is Exists with the top-level keys compared case-insensitively.
// When several keys fold to the same name the last one in document order
// decides.
func (s *Store) ExistsFold(key string) bool {
	if !s.wellFormed {
		return false
	}
	want := strings.ToLower(key)
	found := false
	s.doc.Range(func(k string, v any) bool {
		if strings.ToLower(k) == want {
			found = v != nil
		}
		return true
	})
	return found
}

// Remove deletes key if present.
func (s *Store) Remove(key string) bool {
	if !s.wellFormed {
		return false
	}
	s.doc.Delete(key)
	return true
}

// All returns a copy of the document. A store that is not well-formed
// returns an empty document.
func (s *Store) All() *config.Document {
	if !s.wellFormed {
		return config.NewDocument()
	}
	return s.doc.Clone()
}

// Keys returns the top-level keys in document order.
func (s *Store) Keys() []string {
	if !s.wellFormed {
		return nil
	}
	return s.doc.Keys()
}

func (s *Store) codec() (codec.Codec, error) {
	return codec.For(s.format,
		codec.WithLogger(s.logger),
		codec.WithSource(s.path),
		codec.WithClock(s.now))
}

// Compile-time check that Store implements config.Store.
var _ config.Store = (*Store)(nil)
