//go:build windows

package filestore

import "os"

// atomicWrite falls back to a plain write; renameio has no Windows support.
func atomicWrite(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
