package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an on-disk encoding.
type Format int

const (
	// Detect derives the format from the file extension at load time.
	Detect     Format = -1
	Properties Format = 0
	JSON       Format = 1
	YAML       Format = 2
	Serialized Format = 4
	Enum       Format = 5

	// CNF and Enumeration are aliases kept for callers used to the long names.
	CNF         = Properties
	Enumeration = Enum
)

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case Detect:
		return "detect"
	case Properties:
		return "properties"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case Serialized:
		return "serialized"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Valid reports whether f names a concrete encoding (not Detect).
func (f Format) Valid() bool {
	switch f {
	case Properties, JSON, YAML, Serialized, Enum:
		return true
	}
	return false
}

// Extension returns the canonical file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case Properties:
		return "properties"
	case JSON:
		return "json"
	case YAML:
		return "yml"
	case Serialized:
		return "sl"
	case Enum:
		return "txt"
	}
	return ""
}

// FormatForExtension maps a lowercase file extension (without the dot) to
// its format.
func FormatForExtension(ext string) (Format, bool) {
	switch ext {
	case "properties", "cnf", "conf", "config":
		return Properties, true
	case "json", "js":
		return JSON, true
	case "yml", "yaml":
		return YAML, true
	case "sl", "serialize":
		return Serialized, true
	case "txt", "list", "enum":
		return Enum, true
	}
	return Detect, false
}

// DetectFormat resolves the format of path from the segment after the last
// dot of its base name. A base name without a dot is looked up whole, which
// never matches.
func DetectFormat(path string) (Format, bool) {
	base := filepath.Base(path)
	ext := base
	if i := strings.LastIndex(base, "."); i >= 0 {
		ext = base[i+1:]
	}
	return FormatForExtension(strings.ToLower(strings.TrimSpace(ext)))
}

// ParseFormat accepts a format name ("properties", "json", "yaml",
// "serialized", "enum", "detect") or any known extension.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, ".")))
	switch name {
	case "", "detect", "auto":
		return Detect, nil
	case "serialized":
		return Serialized, nil
	case "enumeration":
		return Enum, nil
	}
	if f, ok := FormatForExtension(name); ok {
		return f, nil
	}
	return Detect, fmt.Errorf("unknown config format %q", name)
}
