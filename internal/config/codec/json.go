package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cfgstore/internal/config"

	"github.com/tidwall/pretty"
)

var jsonPretty = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

type jsonCodec struct{}

// Decode walks the token stream so object key order survives. Integers that
// overflow int64 are kept as their decimal text.
func (jsonCodec) Decode(data []byte) (*config.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &DecodeError{Format: config.JSON, Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		if _, err := decodeJSONRest(dec, tok); err != nil {
			return nil, &DecodeError{Format: config.JSON, Err: err}
		}
		return nil, ErrNotMapping
	}
	doc, err := decodeJSONObject(dec)
	if err != nil {
		return nil, &DecodeError{Format: config.JSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Format: config.JSON, Err: errors.New("trailing data after top-level object")}
	}
	return doc, nil
}

func (jsonCodec) Encode(doc *config.Document) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return pretty.PrettyOptions(raw, jsonPretty), nil
}

// decodeJSONObject reads members until the closing brace; the opening brace
// has already been consumed.
func decodeJSONObject(dec *json.Decoder) (*config.Document, error) {
	doc := config.NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", tok)
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONRest(dec, tok)
}

func decodeJSONRest(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		return jsonNumber(t), nil
	}
	return tok, nil
}

func jsonNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return s
}
