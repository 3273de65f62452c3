package codec

import (
	"strings"

	"cfgstore/internal/config"
)

// enumCodec stores a set of keys, one per line. Every present key maps to
// true; values are dropped on encode.
type enumCodec struct{}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (enumCodec) Decode(data []byte) (*config.Document, error) {
	doc := config.NewDocument()
	text := strings.TrimSpace(lineEndings.Replace(string(data)))
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Set(line, true)
	}
	return doc, nil
}

func (enumCodec) Encode(doc *config.Document) ([]byte, error) {
	return []byte(strings.Join(doc.Keys(), "\r\n")), nil
}
