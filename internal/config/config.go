// Package config defines the format-agnostic configuration document shared by
// every on-disk encoding, the format tags that select an encoding, and the
// recursive default-merge that reconciles a loaded document with a template.
//
// The file-backed store lives in the filestore subpackage and the per-format
// encoders in the codec subpackage.
package config
