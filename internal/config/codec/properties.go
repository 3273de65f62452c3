package codec

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cfgstore/internal/config"

	"github.com/rs/zerolog"
)

// propertyLine matches key=value anywhere in the text; the value runs to the
// end of the line.
var propertyLine = regexp.MustCompile(`([a-zA-Z0-9\-_.]+)=([^\r\n]*)`)

const (
	propertiesHeader     = "#Properties Config file\r\n"
	propertiesTimeLayout = "Mon Jan 2 15:04:05 MST 2006"
)

type propertiesCodec struct {
	logger zerolog.Logger
	source string
	now    func() time.Time
}

func (p *propertiesCodec) Decode(data []byte) (*config.Document, error) {
	doc := config.NewDocument()
	for _, m := range propertyLine.FindAllStringSubmatch(string(data), -1) {
		k := m[1]
		var v any = strings.TrimSpace(m[2])
		switch strings.ToLower(v.(string)) {
		case "on", "true", "yes":
			v = true
		case "off", "false", "no":
			v = false
		}
		if doc.Has(k) {
			p.logger.Info().
				Str("key", k).
				Str("file", p.source).
				Msg("repeated property")
		}
		doc.Set(k, v)
	}
	return doc, nil
}

func (p *propertiesCodec) Encode(doc *config.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(propertiesHeader)
	buf.WriteString("#" + p.now().Format(propertiesTimeLayout) + "\r\n")

	var err error
	doc.Range(func(k string, v any) bool {
		var s string
		if s, err = propertyValue(v); err != nil {
			err = fmt.Errorf("encoding property %q: %w", k, err)
			return false
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(s)
		buf.WriteString("\r\n")
		return true
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func propertyValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case bool:
		if t {
			return "on", nil
		}
		return "off", nil
	case string:
		return t, nil
	case []string:
		return strings.Join(t, ";"), nil
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			s, err := propertyValue(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ";"), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case *config.Document:
		raw, err := t.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return fmt.Sprint(v), nil
}
