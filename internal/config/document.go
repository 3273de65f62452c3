package config

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
)

// Document is an insertion-ordered mapping from string keys to values.
//
// Values are bool, string, the numeric kinds produced by the decoders (int,
// int64, uint64, float64), sequences ([]string or []any), nested *Document,
// or nil for an explicit null. The zero value is not usable; call NewDocument.
type Document struct {
	keys   []string
	values map[string]any
}

func init() {
	gob.Register(&Document{})
	gob.Register([]any{})
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// FromMap builds a document from a plain map. Keys are inserted in sorted
// order since map iteration order is random; nested maps become documents.
func FromMap(m map[string]any) *Document {
	d := NewDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.Set(k, NormalizeValue(m[k]))
	}
	return d
}

// NormalizeValue converts plain Go containers into the shapes a Document
// holds: map[string]any and map[any]any become *Document (other key types
// are stringified with fmt.Sprint) and []any elements are normalized
// recursively. Other values are returned unchanged.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = e
		}
		return FromMap(m)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = NormalizeValue(e)
		}
		return out
	}
	return v
}

// Len returns the number of keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the value stored under key and whether the key is present.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present, even if it holds nil.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set upserts key. A new key is appended; an existing key keeps its position.
func (d *Document) Set(key string, v any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Range calls fn for each entry in insertion order until fn returns false.
func (d *Document) Range(fn func(key string, v any) bool) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := NewDocument()
	if d == nil {
		return out
	}
	out.keys = make([]string, len(d.keys))
	copy(out.keys, d.keys)
	for k, v := range d.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// ToMap converts d into plain nested maps, dropping key order.
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, d.Len())
	d.Range(func(k string, v any) bool {
		out[k] = plainValue(v)
		return true
	})
	return out
}

// Equal reports whether d and o hold the same keys and values. Key order is
// not compared.
func (d *Document) Equal(o *Document) bool {
	if d.Len() != o.Len() {
		return false
	}
	for _, k := range d.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		v, _ := d.Get(k)
		if !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes d as a JSON object, keeping key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type gobEntry struct {
	Key   string
	Value any
}

// GobEncode implements gob.GobEncoder as an ordered list of entries.
func (d *Document) GobEncode() ([]byte, error) {
	entries := make([]gobEntry, 0, d.Len())
	d.Range(func(k string, v any) bool {
		entries = append(entries, gobEntry{Key: k, Value: v})
		return true
	})
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (d *Document) GobDecode(data []byte) error {
	var entries []gobEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return err
	}
	d.keys = nil
	d.values = make(map[string]any, len(entries))
	for _, e := range entries {
		d.Set(e.Key, e.Value)
	}
	return nil
}

func appendJSON(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *Document:
		buf.WriteByte('{')
		var err error
		i := 0
		t.Range(func(k string, val any) bool {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			if err = appendScalarJSON(buf, k); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = appendJSON(buf, val)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	return appendScalarJSON(buf, v)
}

func appendScalarJSON(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case uint64:
		if t > math.MaxInt64 {
			v = strconv.FormatUint(t, 10)
		}
	case uint:
		if uint64(t) > math.MaxInt64 {
			v = strconv.FormatUint(uint64(t), 10)
		}
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	out := bytes.TrimRight(tmp.Bytes(), "\n")
	buf.Write(out)
	switch v.(type) {
	case float64, float32:
		// Whole floats keep a decimal point.
		if !bytes.ContainsAny(out, ".eE") {
			buf.WriteString(".0")
		}
	}
	return nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	}
	return v
}

// valuesEqual compares decoded values. Numbers compare by value across
// kinds, an integer too large for int64 equals its decimal string, and
// []string equals an []any holding the same strings.
func valuesEqual(a, b any) bool {
	switch va := a.(type) {
	case *Document:
		vb, ok := b.(*Document)
		return ok && va.Equal(vb)
	case []any, []string:
		la, _ := listValue(va)
		lb, ok := listValue(b)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !valuesEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	_, sa := a.(string)
	_, sb := b.(string)
	if !sa || !sb {
		na, okA := numberValue(a)
		nb, okB := numberValue(b)
		if okA && okB {
			return na.Cmp(nb) == 0
		}
	}
	return reflect.DeepEqual(a, b)
}

func listValue(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

// numberValue returns v as an exact rational. Strings count only when they
// hold an integer outside the int64 range, the form decoders keep such
// integers in.
func numberValue(v any) (*big.Rat, bool) {
	r := new(big.Rat)
	switch t := v.(type) {
	case int:
		return r.SetInt64(int64(t)), true
	case int8:
		return r.SetInt64(int64(t)), true
	case int16:
		return r.SetInt64(int64(t)), true
	case int32:
		return r.SetInt64(int64(t)), true
	case int64:
		return r.SetInt64(t), true
	case uint:
		return r.SetUint64(uint64(t)), true
	case uint8:
		return r.SetUint64(uint64(t)), true
	case uint16:
		return r.SetUint64(uint64(t)), true
	case uint32:
		return r.SetUint64(uint64(t)), true
	case uint64:
		return r.SetUint64(t), true
	case float32:
		return numberValue(float64(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, false
		}
		return r.SetFloat64(t), true
	case string:
		if _, err := strconv.ParseInt(t, 10, 64); !errors.Is(err, strconv.ErrRange) {
			return nil, false
		}
		i, ok := new(big.Int).SetString(t, 10)
		if !ok {
			return nil, false
		}
		return r.SetInt(i), true
	}
	return nil, false
}
