package codec

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"cfgstore/internal/config"

	"gopkg.in/yaml.v3"
)

// yamlKeyLine matches a bare key at the start of a line, after optional
// indentation.
var yamlKeyLine = regexp.MustCompile(`(?m)^([ \t]*)([a-zA-Z_][^:\r\n]*):`)

// QuoteYAMLKeys wraps every bare line-leading key in double quotes so keys
// holding characters a strict scanner would misread still parse as strings.
func QuoteYAMLKeys(text string) string {
	return yamlKeyLine.ReplaceAllString(text, `$1"$2":`)
}

type yamlCodec struct{}

func (yamlCodec) Decode(data []byte) (*config.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(QuoteYAMLKeys(string(data))), &root); err != nil {
		return nil, &DecodeError{Format: config.YAML, Err: err}
	}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	doc := config.NewDocument()
	if err := decodeYAMLMapping(n, doc); err != nil {
		return nil, &DecodeError{Format: config.YAML, Err: err}
	}
	return doc, nil
}

func (yamlCodec) Encode(doc *config.Document) ([]byte, error) {
	n, err := yamlDocumentNode(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// decodeYAMLMapping copies the pairs of n into doc. Merge keys ("<<") only
// contribute keys the mapping does not set itself.
func decodeYAMLMapping(n *yaml.Node, doc *config.Document) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolveAlias(n.Content[i]), n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.Tag == "!!merge" {
			merges = append(merges, resolveAlias(v))
			continue
		}
		val, err := yamlValue(v)
		if err != nil {
			return err
		}
		doc.Set(k.Value, val)
	}

	for _, m := range merges {
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			src = resolveAlias(src)
			if src.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
			}
			merged := config.NewDocument()
			if err := decodeYAMLMapping(src, merged); err != nil {
				return err
			}
			merged.Range(func(k string, v any) bool {
				if !doc.Has(k) {
					doc.Set(k, v)
				}
				return true
			})
		}
	}
	return nil
}

func yamlValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		doc := config.NewDocument()
		if err := decodeYAMLMapping(n, doc); err != nil {
			return nil, err
		}
		return doc, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func yamlDocumentNode(doc *config.Document) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	doc.Range(func(k string, v any) bool {
		var vn *yaml.Node
		if vn, err = yamlValueNode(v); err != nil {
			err = fmt.Errorf("encoding key %q: %w", k, err)
			return false
		}
		n.Content = append(n.Content,
			yamlStringNode(k),
			vn,
		)
		return true
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// yamlStringNode emits s as a string scalar. Text spanning lines is forced
// onto one double-quoted line: inside a block scalar a line like "rules: x"
// would be rewritten by QuoteYAMLKeys on the next decode.
func yamlStringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsAny(s, "\r\n") {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func yamlValueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *config.Document:
		return yamlDocumentNode(t)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			en, err := yamlValueNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case []string:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n.Content = append(n.Content, yamlStringNode(e))
		}
		return n, nil
	case string:
		if strings.ContainsAny(t, "\r\n") {
			return yamlStringNode(t), nil
		}
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
