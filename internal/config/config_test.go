package config

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"server.properties", Properties, true},
		{"my.cnf", Properties, true},
		{"app.conf", Properties, true},
		{"app.config", Properties, true},
		{"data.json", JSON, true},
		{"data.js", JSON, true},
		{"plugin.yml", YAML, true},
		{"plugin.yaml", YAML, true},
		{"cache.sl", Serialized, true},
		{"cache.serialize", Serialized, true},
		{"ops.txt", Enum, true},
		{"banned.list", Enum, true},
		{"flags.enum", Enum, true},
		{"/etc/app/Settings.YML", YAML, true},
		{"archive.tar.json", JSON, true},
		{"settings.cfg", Detect, false},
		{"Makefile", Detect, false},
		{"dir.json/file", Detect, false},
		{"trailing.", Detect, false},
	}

	for _, tt := range tests {
		got, ok := DetectFormat(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectFormat(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", Detect, false},
		{"detect", Detect, false},
		{"properties", Properties, false},
		{"CNF", Properties, false},
		{".json", JSON, false},
		{"yaml", YAML, false},
		{"serialized", Serialized, false},
		{"enumeration", Enum, false},
		{"list", Enum, false},
		{"toml", Detect, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	for _, f := range []Format{Properties, JSON, YAML, Serialized, Enum} {
		if !f.Valid() {
			t.Errorf("%v.Valid() = false", f)
		}
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", f.String(), got, err, f)
		}
		if ext, ok := FormatForExtension(f.Extension()); !ok || ext != f {
			t.Errorf("FormatForExtension(%q) = %v, %v; want %v", f.Extension(), ext, ok, f)
		}
	}
	if Detect.Valid() || Format(3).Valid() {
		t.Error("Detect and Format(3) must not be valid")
	}
	if got := Format(3).String(); got != "format(3)" {
		t.Errorf("Format(3).String() = %q", got)
	}
}
