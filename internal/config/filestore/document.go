package filestore

import (
	"fmt"
	"os"

	"cfgstore/internal/config"
	"cfgstore/internal/config/codec"
)

// resolveFormat returns format, or the format detected from path when
// format is config.Detect.
func resolveFormat(path string, format config.Format) (config.Format, error) {
	if format != config.Detect {
		return format, nil
	}
	f, ok := config.DetectFormat(path)
	if !ok {
		return config.Detect, fmt.Errorf("cannot detect config format of %s", path)
	}
	return f, nil
}

// ReadDocument decodes the file at path without touching it. Unlike Store,
// every failure is returned.
func ReadDocument(path string, format config.Format, opts ...codec.Option) (*config.Document, error) {
	f, err := resolveFormat(path, format)
	if err != nil {
		return nil, err
	}
	c, err := codec.For(f, append([]codec.Option{codec.WithSource(path)}, opts...)...)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	doc, err := c.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return doc, nil
}

// WriteDocument encodes doc and writes it to path under the same lock and
// atomic replace as Store.Save, returning every failure.
func WriteDocument(path string, format config.Format, doc *config.Document, opts ...codec.Option) error {
	f, err := resolveFormat(path, format)
	if err != nil {
		return err
	}
	c, err := codec.For(f, append([]codec.Option{codec.WithSource(path)}, opts...)...)
	if err != nil {
		return err
	}
	raw, err := c.Encode(doc)
	if err != nil {
		return err
	}
	return writeFile(path, raw)
}
