// Package codec implements the five on-disk encodings of a config document.
//
// Every codec turns raw file content into a *config.Document and back. Decode
// reports ErrNotMapping when the content parses but is not a mapping, and a
// *DecodeError when it does not parse at all; callers decide how to degrade.
package codec

import (
	"errors"
	"fmt"
	"time"

	"cfgstore/internal/config"

	"github.com/rs/zerolog"
)

// ErrNotMapping is returned when decoded content is not a key/value mapping.
var ErrNotMapping = errors.New("decoded content is not a mapping")

// ErrUnsupportedFormat is returned by For for Detect or an unknown tag.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Codec decodes and encodes one on-disk format.
type Codec interface {
	Decode(data []byte) (*config.Document, error)
	Encode(doc *config.Document) ([]byte, error)
}

// DecodeError wraps a parse failure with the format that produced it.
type DecodeError struct {
	Format config.Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type options struct {
	logger zerolog.Logger
	source string
	now    func() time.Time
}

// Option configures a codec returned by For.
type Option func(*options)

// WithLogger sets the sink for non-fatal notices such as repeated
// properties keys.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSource names the file being decoded in notices.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

// WithClock overrides the time source for the properties header.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// For returns the codec for f.
func For(f config.Format, opts ...Option) (Codec, error) {
	o := options{
		logger: zerolog.Nop(),
		source: "<memory>",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch f {
	case config.Properties:
		return &propertiesCodec{logger: o.logger, source: o.source, now: o.now}, nil
	case config.JSON:
		return jsonCodec{}, nil
	case config.YAML:
		return yamlCodec{}, nil
	case config.Serialized:
		return serializedCodec{}, nil
	case config.Enum:
		return enumCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
}
