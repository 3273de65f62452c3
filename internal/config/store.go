package config

// Store provides key-value access to a configuration document.
// Keys are flat strings at the top level of the document; dotted keys like
// "server.port" are literal strings, not nested paths.
type Store interface {
	// Get returns the value for key and whether it was found. An absent key
	// and an unusable store both report false.
	Get(key string) (any, bool)

	// Set upserts key in memory. It reports false when the store is unusable.
	Set(key string, value any) bool

	// Remove deletes key in memory if present.
	Remove(key string) bool

	// Exists reports whether key holds a non-nil value.
	Exists(key string) bool

	// ExistsFold is Exists with top-level key case folded.
	ExistsFold(key string) bool

	// All returns a copy of the whole document.
	All() *Document

	// Keys returns the top-level keys in document order.
	Keys() []string

	// Save writes the document back in its format.
	Save() bool

	// Reload discards in-memory changes and reads the file again.
	Reload() bool

	// Check reports whether the store resolved a format and holds a document.
	Check() bool
}
