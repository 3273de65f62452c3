package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"cfgstore/internal/config"
)

// serializedCodec stores the document in Go's native gob encoding.
type serializedCodec struct{}

func (serializedCodec) Decode(data []byte) (*config.Document, error) {
	doc := config.NewDocument()
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, &DecodeError{Format: config.Serialized, Err: err}
	}
	return doc, nil
}

func (serializedCodec) Encode(doc *config.Document) ([]byte, error) {
	if doc == nil {
		doc = config.NewDocument()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding serialized: %w", err)
	}
	return buf.Bytes(), nil
}
